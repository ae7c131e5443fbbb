package state

import (
	"time"

	"go.uber.org/zap"

	"idmlc/text"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start: time.Now(),
	}
}

// TextTools returns glyph measurer and statistics splitter shared by all
// processed documents. Both are loaded on first use, either may be nil when
// its data cannot be loaded - measuring is skipped then.
func (e *LocalEnv) TextTools() (text.Measurer, *text.Splitter) {
	e.textOnce.Do(func() {
		log := e.Log
		if log == nil {
			log = zap.NewNop()
		}
		if fonts, err := text.NewGoFonts(); err != nil {
			log.Warn("Unable to load fonts, text frames will not be measured", zap.Error(err))
		} else {
			e.measurer = fonts
		}
		e.splitter = text.NewSplitter(log)
	})
	return e.measurer, e.splitter
}
