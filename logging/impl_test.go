package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
	"go.viam.com/test"
)

type recordingAppender struct {
	entries []zapcore.Entry
	fields  [][]zapcore.Field
}

func (r *recordingAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	r.entries = append(r.entries, entry)
	r.fields = append(r.fields, fields)
	return nil
}

func (r *recordingAppender) Sync() error { return nil }

func TestLoggerRespectsLevel(t *testing.T) {
	rec := &recordingAppender{}
	logger := newImpl("test", NewAtomicLevelAt(INFO), false, rec)

	logger.Debug("should be filtered")
	test.That(t, len(rec.entries), test.ShouldEqual, 0)

	logger.Info("visible")
	test.That(t, len(rec.entries), test.ShouldEqual, 1)
	test.That(t, rec.entries[0].Message, test.ShouldEqual, "visible")
}

func TestLoggerDebugwCollectsFields(t *testing.T) {
	rec := &recordingAppender{}
	logger := newImpl("test", NewAtomicLevelAt(DEBUG), false, rec)

	logger.Debugw("tick", "err", nil, "state", "PLANNING")
	test.That(t, len(rec.entries), test.ShouldEqual, 1)
	test.That(t, len(rec.fields[0]), test.ShouldEqual, 2)
}

func TestLoggerWarnwOddKeysGetsUnpairedMarker(t *testing.T) {
	rec := &recordingAppender{}
	logger := newImpl("test", NewAtomicLevelAt(DEBUG), false, rec)

	logger.Warnw("odd", "onlyKey")
	test.That(t, len(rec.fields[0]), test.ShouldEqual, 1)
}

func TestAddAppenderFansOutToAllSinks(t *testing.T) {
	first, second := &recordingAppender{}, &recordingAppender{}
	logger := newImpl("test", NewAtomicLevelAt(INFO), false, first)
	logger.AddAppender(second)

	logger.Info("fan out")
	test.That(t, len(first.entries), test.ShouldEqual, 1)
	test.That(t, len(second.entries), test.ShouldEqual, 1)
}

func TestLevelFromString(t *testing.T) {
	l, err := LevelFromString("DEBUG")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, l, test.ShouldEqual, DEBUG)

	_, err = LevelFromString("nonsense")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestAtomicLevelSetGet(t *testing.T) {
	level := NewAtomicLevelAt(INFO)
	test.That(t, level.Get(), test.ShouldEqual, INFO)
	level.Set(ERROR)
	test.That(t, level.Get(), test.ShouldEqual, ERROR)
}
