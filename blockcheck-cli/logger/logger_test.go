package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

// captureOutput captures log output during test execution
func captureOutput(f func()) string {
	oldOutput := stdLogger.Writer()
	r, w, _ := os.Pipe()
	stdLogger.SetOutput(w)

	f()

	w.Close()
	stdLogger.SetOutput(oldOutput)

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String()
}

func TestSetLevel(t *testing.T) {
	tests := []struct {
		name          string
		level         LogLevel
		expectedLevel LogLevel
	}{
		{"set debug level", DEBUG, DEBUG},
		{"set info level", INFO, INFO},
		{"set warn level", WARN, WARN},
		{"set error level", ERROR, ERROR},
		{"set fatal level", FATAL, FATAL},
	}

	originalLevel := GetLevel()
	defer func() {
		SetLevel(originalLevel)
	}()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetLevel(tt.level)
			if GetLevel() != tt.expectedLevel {
				t.Errorf("SetLevel() = %v, want %v", GetLevel(), tt.expectedLevel)
			}
		})
	}
}

func TestGetLevelFromString(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"DEBUG", DEBUG},
		{"debug", DEBUG},
		{"INFO", INFO},
		{"WARN", WARN},
		{"ERROR", ERROR},
		{"FATAL", FATAL},
		{"unknown", WARN},
		{"", WARN},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := GetLevelFromString(tt.input); got != tt.expected {
				t.Errorf("GetLevelFromString(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	originalLevel := GetLevel()
	defer func() {
		SetLevel(originalLevel)
	}()

	SetLevel(WARN)
	output := captureOutput(func() {
		Debug("debug message")
		Info("info message")
		Warn("warn message")
		Error("error message")
	})

	if strings.Contains(output, "debug message") {
		t.Errorf("debug message should be filtered at WARN level")
	}
	if strings.Contains(output, "info message") {
		t.Errorf("info message should be filtered at WARN level")
	}
	if !strings.Contains(output, "[WARN] warn message") {
		t.Errorf("warn message missing from output: %q", output)
	}
	if !strings.Contains(output, "[ERROR] error message") {
		t.Errorf("error message missing from output: %q", output)
	}
}

func TestIsLevelEnabled(t *testing.T) {
	originalLevel := GetLevel()
	defer func() {
		SetLevel(originalLevel)
	}()

	SetLevel(INFO)
	if IsLevelEnabled(DEBUG) {
		t.Errorf("DEBUG should not be enabled at INFO level")
	}
	if !IsLevelEnabled(ERROR) {
		t.Errorf("ERROR should be enabled at INFO level")
	}
}

func TestFormatArguments(t *testing.T) {
	originalLevel := GetLevel()
	defer func() {
		SetLevel(originalLevel)
	}()

	SetLevel(INFO)
	output := captureOutput(func() {
		Info("checked %d requests, %d matched", 3, 1)
	})

	if !strings.Contains(output, "checked 3 requests, 1 matched") {
		t.Errorf("formatted message missing from output: %q", output)
	}
}
