package policy

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/On-Jun9/HeicPipe/pkg/types"
)

// TestConflictResolver_NoConflict는 테스트 코드 동작을 검증하거나 보조합니다.
func TestConflictResolver_NoConflict(t *testing.T) {
	tmpDir := t.TempDir()
	resolver := NewConflictResolver(types.ConflictPolicySkip)

	res := resolver.Resolve(filepath.Join(tmpDir, "photo.jpg"))

	if res.Skip {
		t.Error("should not skip when no conflict")
	}
	if res.Action != types.WriteActionWritten {
		t.Errorf("expected written action, got %s", res.Action)
	}
}

// TestConflictResolver_Skip는 테스트 코드 동작을 검증하거나 보조합니다.
func TestConflictResolver_Skip(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "photo.jpg")
	os.WriteFile(existingFile, []byte("existing"), 0644)

	res := NewConflictResolver(types.ConflictPolicySkip).Resolve(existingFile)

	if !res.Skip {
		t.Error("should skip on conflict with skip policy")
	}
	if res.Action != types.WriteActionSkipped {
		t.Errorf("expected skipped action, got %s", res.Action)
	}
}

// TestConflictResolver_Rename는 테스트 코드 동작을 검증하거나 보조합니다.
func TestConflictResolver_Rename(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "photo.jpg")
	os.WriteFile(existingFile, []byte("existing"), 0644)
	os.WriteFile(filepath.Join(tmpDir, "photo_1.jpg"), []byte("existing"), 0644)

	res := NewConflictResolver(types.ConflictPolicyRename).Resolve(existingFile)

	if res.Skip {
		t.Error("should not skip on rename policy")
	}
	if res.Action != types.WriteActionRenamed {
		t.Errorf("expected renamed action, got %s", res.Action)
	}

	expected := filepath.Join(tmpDir, "photo_2.jpg")
	if res.DestPath != expected {
		t.Errorf("expected %s, got %s", expected, res.DestPath)
	}
}

// TestConflictResolver_Overwrite는 테스트 코드 동작을 검증하거나 보조합니다.
func TestConflictResolver_Overwrite(t *testing.T) {
	// overwrite 정책은 같은 경로를 유지하고 overwrite 액션을 반환해야 한다.
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "photo.jpg")
	os.WriteFile(existingFile, []byte("existing"), 0644)

	res := NewConflictResolver(types.ConflictPolicyOverwrite).Resolve(existingFile)
	if res.Skip {
		t.Fatal("should not skip on overwrite policy")
	}
	if res.Action != types.WriteActionOverwritten {
		t.Fatalf("expected overwritten action, got %s", res.Action)
	}
	if res.DestPath != existingFile {
		t.Fatalf("expected same destination path, got %s", res.DestPath)
	}
}

// TestConflictResolver_DefaultPolicyFallsBackToSkip는 테스트 코드 동작을 검증하거나 보조합니다.
func TestConflictResolver_DefaultPolicyFallsBackToSkip(t *testing.T) {
	// 알 수 없는 정책 값은 안전하게 skip으로 처리해야 한다.
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "photo.jpg")
	os.WriteFile(existingFile, []byte("existing"), 0644)

	res := NewConflictResolver(types.ConflictPolicy("unknown")).Resolve(existingFile)
	if !res.Skip {
		t.Fatal("expected skip for unknown policy")
	}
	if res.Action != types.WriteActionSkipped {
		t.Fatalf("expected skipped action, got %s", res.Action)
	}
}

// TestConflictResolver_GenerateUniqueName_ReturnsOriginalWhenExhausted는 테스트 코드 동작을 검증하거나 보조합니다.
func TestConflictResolver_GenerateUniqueName_ReturnsOriginalWhenExhausted(t *testing.T) {
	// _1~_9999 후보가 모두 존재하면 generateUniqueName은 원본 경로를 반환해야 한다.
	tmpDir := t.TempDir()
	original := filepath.Join(tmpDir, "photo.jpg")

	for i := 1; i < maxSuffix; i++ {
		candidate := filepath.Join(tmpDir, "photo_"+strconv.Itoa(i)+".jpg")
		if err := os.WriteFile(candidate, []byte("x"), 0644); err != nil {
			t.Fatalf("failed to create candidate file %d: %v", i, err)
		}
	}

	got := NewConflictResolver(types.ConflictPolicyRename).generateUniqueName(original)

	if got != original {
		t.Fatalf("expected original path when candidates exhausted, got %s", got)
	}
}

// TestNameSet_Claim는 테스트 코드 동작을 검증하거나 보조합니다.
func TestNameSet_Claim(t *testing.T) {
	// 같은 배치 안에서 겹치는 이름은 _N 접미사로 구분되어야 한다.
	s := NewNameSet()

	got := []string{s.Claim("a.jpg"), s.Claim("a.jpg"), s.Claim("A.JPG"), s.Claim("b.jpg"), s.Claim("a.jpg")}
	want := []string{"a.jpg", "a_1.jpg", "A_2.JPG", "b.jpg", "a_3.jpg"}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("claim %d: expected %s, got %s (all=%v)", i, want[i], got[i], got)
		}
	}
}
