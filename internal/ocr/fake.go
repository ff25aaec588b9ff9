package ocr

import "context"

// FakeEngine is a test double for Engine.
type FakeEngine struct {
	Text   string
	Err    error
	Called int
}

func (f *FakeEngine) ExtractText(ctx context.Context, imageBase64 string) (string, error) {
	f.Called++
	if f.Err != nil {
		return "", f.Err
	}
	return f.Text, nil
}

// NewFake returns an engine that always extracts the given text.
func NewFake(text string) *FakeEngine {
	return &FakeEngine{Text: text}
}
