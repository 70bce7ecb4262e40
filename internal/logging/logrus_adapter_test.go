package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogrusAdapter(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		format      string
		expectLevel logrus.Level
	}{
		{
			name:        "debug level with text format",
			level:       "debug",
			format:      "text",
			expectLevel: logrus.DebugLevel,
		},
		{
			name:        "info level with json format",
			level:       "info",
			format:      "json",
			expectLevel: logrus.InfoLevel,
		},
		{
			name:        "invalid level defaults to info",
			level:       "invalid",
			format:      "text",
			expectLevel: logrus.InfoLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogrusAdapter(tt.level, tt.format)
			require.NotNil(t, logger)

			adapter, ok := logger.(*LogrusAdapter)
			require.True(t, ok)
			assert.Equal(t, tt.expectLevel, adapter.logger.Level)

			if tt.format == "json" {
				_, ok := adapter.logger.Formatter.(*logrus.JSONFormatter)
				assert.True(t, ok, "formatter should be JSONFormatter")
			} else {
				_, ok := adapter.logger.Formatter.(*logrus.TextFormatter)
				assert.True(t, ok, "formatter should be TextFormatter")
			}
		})
	}
}

func TestStructuredMethods(t *testing.T) {
	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	base.SetLevel(logrus.DebugLevel)

	logger := NewLogrusAdapterFromLogger(base)

	logger.Info("statement parsed",
		Field{Key: FieldInstitution, Value: "Chase"},
		Field{Key: FieldCount, Value: 12})
	out := buf.String()
	assert.Contains(t, out, "statement parsed")
	assert.Contains(t, out, "Chase")

	buf.Reset()
	logger.WithField(FieldTransactionID, "tx-1").Warn("payment already matched")
	assert.Contains(t, buf.String(), "tx-1")
}

func TestPrintfMethods(t *testing.T) {
	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	base.SetLevel(logrus.DebugLevel)

	logger := NewLogrusAdapterFromLogger(base)

	tests := []struct {
		name string
		log  func()
		want string
	}{
		{
			name: "Infof",
			log:  func() { logger.Infof("Imported %d transactions into account %s", 3, "acct-1") },
			want: "Imported 3 transactions into account acct-1",
		},
		{
			name: "Warnf",
			log:  func() { logger.Warnf("Skipped %d duplicate transactions", 2) },
			want: "Skipped 2 duplicate transactions",
		},
		{
			name: "Errorf",
			log:  func() { logger.Errorf("failed to match transaction %s", "tx-9") },
			want: "failed to match transaction tx-9",
		},
		{
			name: "Debugf",
			log:  func() { logger.Debugf("cache hit for merchant %s", "STARBUCKS") },
			want: "cache hit for merchant STARBUCKS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.log()
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestWithErrorAttachesField(t *testing.T) {
	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)

	logger := NewLogrusAdapterFromLogger(base)
	logger.WithError(assert.AnError).Error("liability match failed")

	out := buf.String()
	assert.Contains(t, out, "liability match failed")
	assert.Contains(t, out, assert.AnError.Error())
}
