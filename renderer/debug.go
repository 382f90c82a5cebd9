// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

import (
	"github.com/devblok/vista/gfx"
	log "github.com/sirupsen/logrus"
)

// debugLogger forwards validation messages to logger at a matching level.
func debugLogger(logger log.FieldLogger) gfx.DebugFunc {
	return func(severity gfx.DebugSeverity, layer string, code int32, message string) {
		entry := logger.WithFields(log.Fields{
			"layer": layer,
			"code":  code,
		})
		switch severity {
		case gfx.SeverityError:
			entry.Error(message)
		case gfx.SeverityWarning:
			entry.Warn(message)
		case gfx.SeverityPerformanceWarning:
			entry.WithField("performance", true).Warn(message)
		case gfx.SeverityDebug:
			entry.Debug(message)
		default:
			entry.Info(message)
		}
	}
}
