package enrich

import "context"

// mockCompleter returns canned responses in call order and records the
// prompts it saw.
type mockCompleter struct {
	responses []string
	errs      []error
	prompts   []string
	maxTokens []int
	calls     int
}

func (m *mockCompleter) Complete(_ context.Context, prompt string, maxTokens int) (string, error) {
	m.prompts = append(m.prompts, prompt)
	m.maxTokens = append(m.maxTokens, maxTokens)
	i := m.calls
	m.calls++
	if i < len(m.errs) && m.errs[i] != nil {
		return "", m.errs[i]
	}
	if i < len(m.responses) {
		return m.responses[i], nil
	}
	return "", nil
}
