package state

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"golang.org/x/text/encoding/charmap"

	"idmlc/config"
)

func TestContextWithEnv(t *testing.T) {
	ctx := ContextWithEnv(context.Background())
	env := EnvFromContext(ctx)
	if env == nil {
		t.Fatal("EnvFromContext() returned nil")
	}
	if env.start.IsZero() {
		t.Error("Environment start time not set")
	}
	if EnvFromContext(ctx) != env {
		t.Error("Environment must be the same for the same context")
	}
}

func TestEnvFromContext_Missing(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic when env not in context")
		}
	}()
	EnvFromContext(context.Background())
}

func TestLocalEnv_Uptime(t *testing.T) {
	env := EnvFromContext(ContextWithEnv(context.Background()))

	time.Sleep(10 * time.Millisecond)
	uptime := env.Uptime()
	if uptime < 10*time.Millisecond {
		t.Errorf("Uptime() = %v, expected at least 10ms", uptime)
	}
	if uptime > time.Second {
		t.Errorf("Uptime() = %v, unexpectedly large", uptime)
	}
}

func TestLocalEnv_StdLog(t *testing.T) {
	t.Run("with logger", func(t *testing.T) {
		env := &LocalEnv{Log: zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))}
		env.RedirectStdLog()
		if env.restoreStdLog == nil {
			t.Error("Expected restoreStdLog to be set")
		}
		env.RestoreStdLog()
	})

	t.Run("without logger", func(t *testing.T) {
		env := &LocalEnv{}
		env.RedirectStdLog()
		if env.restoreStdLog != nil {
			t.Error("Expected restoreStdLog to stay nil")
		}
		env.RestoreStdLog()
	})
}

func TestLocalEnv_Fields(t *testing.T) {
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	env := EnvFromContext(ContextWithEnv(context.Background()))
	env.Cfg = cfg
	env.NoDirs, env.Overwrite = true, true
	env.CodePage = charmap.CodePage866

	if env.Cfg.Document.DPI != 96 || !env.NoDirs || !env.Overwrite || env.CodePage == nil {
		t.Errorf("env = %+v", env)
	}
}

func TestLocalEnv_TextTools(t *testing.T) {
	env := &LocalEnv{Log: zaptest.NewLogger(t)}
	m, s := env.TextTools()
	if m == nil {
		t.Fatal("measurer not loaded")
	}
	if m.Advance("Hello", 16, "Regular") <= 0 {
		t.Error("measurer returned no advance")
	}
	if s == nil {
		t.Error("splitter not loaded")
	}

	m2, s2 := env.TextTools()
	if m2 != m || s2 != s {
		t.Error("text tools must be loaded once")
	}
}
