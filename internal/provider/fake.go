package provider

import "context"

// FakeProvider is a test double for Provider.
type FakeProvider struct {
	ResponseText string
	Err          error
	Called       int
	LastPrompt   string
}

func (f *FakeProvider) Complete(ctx context.Context, prompt string) (string, error) {
	f.Called++
	f.LastPrompt = prompt
	if f.Err != nil {
		return "", f.Err
	}
	return f.ResponseText, nil
}

// NewFake returns a provider that always answers with the given text.
func NewFake(response string) *FakeProvider {
	return &FakeProvider{ResponseText: response}
}
