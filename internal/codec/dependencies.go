package codec

import "runtime"

// InstallHint returns platform-specific instructions for installing vips.
func InstallHint() string {
	switch runtime.GOOS {
	case "darwin":
		return "Install with: brew install vips"
	case "linux":
		return "Install with: apt-get install libvips-tools (Ubuntu/Debian) or dnf install vips-tools (Fedora/RHEL)"
	case "windows":
		return "Download from https://www.libvips.org/install.html and add vips.exe to PATH"
	default:
		return "See https://www.libvips.org/install.html"
	}
}
