package util

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetLogLevel(t *testing.T) {
	orig := Logger.GetLevel()
	defer Logger.SetLevel(orig)

	if err := SetLogLevel("debug"); err != nil {
		t.Fatalf("SetLogLevel(debug): %v", err)
	}
	if Logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", Logger.GetLevel())
	}
}

func TestSetLogLevel_Invalid(t *testing.T) {
	if err := SetLogLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestWithStage(t *testing.T) {
	entry := WithStage("urib")
	if entry.Data["stage"] != "urib" {
		t.Errorf("stage field = %v", entry.Data["stage"])
	}
}
