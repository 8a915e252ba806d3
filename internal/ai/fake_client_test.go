package ai

import "context"

type fakeClient struct {
	response  string
	err       error
	panicWith any

	calls       int
	system      string
	prompt      string
	temperature float64
	maxTokens   int
}

func (f *fakeClient) Complete(_ context.Context, system, prompt string, temperature float64, maxOutputTokens int) (string, error) {
	f.calls++
	f.system = system
	f.prompt = prompt
	f.temperature = temperature
	f.maxTokens = maxOutputTokens

	if f.panicWith != nil {
		panic(f.panicWith)
	}
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type closingClient struct {
	fakeClient
	closed int
}

func (c *closingClient) Close() error {
	c.closed++
	return nil
}
