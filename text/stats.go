package text

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"go.uber.org/zap"
)

// Stats describes story text.
type Stats struct {
	Characters int `json:"characters" yaml:"characters"`
	Words      int `json:"words" yaml:"words"`
	Sentences  int `json:"sentences" yaml:"sentences"`
	Paragraphs int `json:"paragraphs" yaml:"paragraphs"`
}

// Splitter counts words and sentences. Zero value (or nil) Splitter counts
// words only and treats every paragraph as a single sentence.
type Splitter struct {
	sentences *sentences.DefaultSentenceTokenizer
	words     sentences.WordTokenizer
}

var (
	englishOnce     sync.Once
	englishSplitter *Splitter
)

// NewSplitter returns splitter with English sentence model. When model
// cannot be loaded nil is returned and sentence detection is off.
func NewSplitter(log *zap.Logger) *Splitter {
	englishOnce.Do(func() {
		tokenizer, err := english.NewSentenceTokenizer(nil)
		if err != nil {
			log.Warn("Unable to load sentences tokenizer data", zap.Error(err))
			return
		}
		englishSplitter = &Splitter{
			sentences: tokenizer,
			words:     sentences.NewWordTokenizer(sentences.NewPunctStrings()),
		}
	})
	return englishSplitter
}

// Count computes text statistics. Paragraphs are non-blank lines.
func (s *Splitter) Count(in string) Stats {
	st := Stats{Characters: utf8.RuneCountInString(in)}
	for para := range strings.SplitSeq(in, "\n") {
		if strings.TrimSpace(para) == "" {
			continue
		}
		st.Paragraphs++
		st.Words += s.countWords(para)
		st.Sentences += s.countSentences(para)
	}
	return st
}

func (s *Splitter) countWords(in string) int {
	if s == nil || s.words == nil {
		count := 0
		for range strings.FieldsSeq(in) {
			count++
		}
		return count
	}
	count := 0
	for _, tok := range s.words.Tokenize(in, false) {
		if isWord(tok.Tok) {
			count++
		}
	}
	return count
}

func (s *Splitter) countSentences(in string) int {
	if s == nil || s.sentences == nil {
		return 1
	}
	count := 0
	for _, sentence := range s.sentences.Tokenize(in) {
		if strings.TrimSpace(sentence.Text) != "" {
			count++
		}
	}
	return max(count, 1)
}

// isWord skips punctuation tokens produced by word tokenizer.
func isWord(tok string) bool {
	return strings.ContainsFunc(tok, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	})
}
