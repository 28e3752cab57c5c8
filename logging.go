package sclient

import (
	"io"

	"github.com/sirupsen/logrus"
)

// discardLogger is the fallback sink used when ConfigOptions.LogAPI is nil:
// the core runs silently by default (spec §6's log sink is an external
// collaborator) but still exercises the same logrus.FieldLogger interface
// everywhere else in the client, so swapping in a real sink later requires
// no code changes.
func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// newRequestLogger derives a per-operation logger carrying the fields a log
// sink needs to correlate one attempt across retries (spec §6).
func newRequestLogger(factory LogFactory, reqUID, op string) logrus.FieldLogger {
	var base logrus.FieldLogger
	if factory != nil {
		base = factory(reqUID)
	} else {
		base = discardLogger()
	}
	return base.WithFields(logrus.Fields{
		"op":      op,
		"req_uid": reqUID,
	})
}
