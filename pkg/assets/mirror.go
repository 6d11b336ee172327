package assets

import (
	"os"
	"path/filepath"

	"github.com/getgauge/common"
	"github.com/lirany1/html-screenshot-reporter/pkg/logger"
)

// MirrorScreenshots copies the screenshot directory next to the report so the
// report's relative links resolve. It is a no-op when the report already sits
// in the screenshot directory's parent or there are no screenshots.
func MirrorScreenshots(srcDir, reportPath, linkDir string) ([]string, error) {
	if _, err := os.Stat(srcDir); os.IsNotExist(err) {
		logger.Debugf("No screenshots at %s, nothing to mirror", srcDir)
		return nil, nil
	}

	dest := filepath.Join(filepath.Dir(reportPath), linkDir)
	if samePath(srcDir, dest) {
		return nil, nil
	}

	if err := os.MkdirAll(dest, 0755); err != nil {
		return nil, err
	}

	files, err := common.MirrorDir(srcDir, dest)
	if err != nil {
		return files, err
	}
	logger.Infof("Mirrored %d screenshots to %s", len(files), dest)
	return files, nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
