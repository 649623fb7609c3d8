package ingest

import (
	"io"
	"os"
	"testing"

	"icdctl/pkg/logging"
)

func TestMain(m *testing.M) {
	logging.Init(logging.LevelError, io.Discard)
	os.Exit(m.Run())
}
