package datasource

import (
	"os"
	"testing"
	"time"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/logger"
)

func TestMain(m *testing.M) {
	// Set DEBUG_TESTS=1 to see retry logs
	if os.Getenv("DEBUG_TESTS") == "" {
		_ = logger.SetLogLevel("error")
	}
	throttleInitialInterval = time.Millisecond
	os.Exit(m.Run())
}
