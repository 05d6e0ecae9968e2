package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// MockTextGenerator mocks a language model. Responses are consumed in order;
// once exhausted, Fallback is returned. Errors are keyed by call number (1-based).
type MockTextGenerator struct {
	Responses []string
	Fallback  string
	Errors    map[int]error
	// Respond, when set, replaces Responses and Fallback
	Respond func(prompt string) (string, error)

	mu    sync.Mutex
	calls []string
}

// Generate records the prompt and returns the next canned response
func (m *MockTextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, prompt)
	n := len(m.calls)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err, ok := m.Errors[n]; ok {
		return "", err
	}
	if m.Respond != nil {
		return m.Respond(prompt)
	}
	if n <= len(m.Responses) {
		return m.Responses[n-1], nil
	}
	return m.Fallback, nil
}

// Calls returns a copy of the prompts seen so far
func (m *MockTextGenerator) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// MockImageGenerator writes a tiny PNG to every destination unless told otherwise
type MockImageGenerator struct {
	// Errors keyed by destination file name (for example "group_3.png")
	Errors map[string]error
	// Skip lists destination file names that are silently not written
	Skip map[string]bool
	// Block, when set, makes GenerateImage wait for ctx to end
	Block bool

	mu    sync.Mutex
	calls []ImageCall
}

// ImageCall records one GenerateImage invocation
type ImageCall struct {
	Prompt   string
	DestPath string
}

// GenerateImage records the call and writes fake image data to destPath
func (m *MockImageGenerator) GenerateImage(ctx context.Context, prompt, destPath string) error {
	m.mu.Lock()
	m.calls = append(m.calls, ImageCall{Prompt: prompt, DestPath: destPath})
	m.mu.Unlock()

	if m.Block {
		<-ctx.Done()
		return ctx.Err()
	}

	name := filepath.Base(destPath)
	if err, ok := m.Errors[name]; ok {
		return err
	}
	if m.Skip[name] {
		return nil
	}
	return os.WriteFile(destPath, PNGData(), 0644)
}

// Calls returns a copy of the recorded calls
func (m *MockImageGenerator) Calls() []ImageCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ImageCall(nil), m.calls...)
}

// MockDescriber mocks an image-understanding model
type MockDescriber struct {
	// Descriptions keyed by image file name; Default is used otherwise
	Descriptions map[string]string
	Default      string
	Errors       map[string]error
	Block        bool

	mu    sync.Mutex
	calls []string
}

// DescribeImage returns the canned description for imagePath
func (m *MockDescriber) DescribeImage(ctx context.Context, imagePath, prompt string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, imagePath)
	m.mu.Unlock()

	if m.Block {
		<-ctx.Done()
		return "", ctx.Err()
	}

	name := filepath.Base(imagePath)
	if err, ok := m.Errors[name]; ok {
		return "", err
	}
	if desc, ok := m.Descriptions[name]; ok {
		return desc, nil
	}
	return m.Default, nil
}

// Calls returns a copy of the described image paths
func (m *MockDescriber) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// MockTranslator mocks the sentence translator
type MockTranslator struct {
	Translations map[string]string
	Errors       map[string]error
	Block        bool

	mu    sync.Mutex
	calls []string
}

// Translate returns a canned translation or "[zh] <sentence>"
func (m *MockTranslator) Translate(ctx context.Context, sentence string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, sentence)
	m.mu.Unlock()

	if m.Block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err, ok := m.Errors[sentence]; ok {
		return "", err
	}
	if translation, ok := m.Translations[sentence]; ok {
		return translation, nil
	}
	return fmt.Sprintf("[zh] %s", sentence), nil
}

// Calls returns a copy of the translated sentences
func (m *MockTranslator) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// MockProgress collects progress reports
type MockProgress struct {
	mu      sync.Mutex
	Reports []ProgressReport
}

// ProgressReport is one recorded progress update
type ProgressReport struct {
	Fraction float64
	Label    string
}

// Report records the update
func (m *MockProgress) Report(fraction float64, label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reports = append(m.Reports, ProgressReport{Fraction: fraction, Label: label})
}

// Fractions returns the reported fractions in order
func (m *MockProgress) Fractions() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]float64, len(m.Reports))
	for i, r := range m.Reports {
		out[i] = r.Fraction
	}
	return out
}

// PNGData returns the bytes of a 1x1 transparent PNG
func PNGData() []byte {
	return []byte{
		0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
		0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4,
		0x89, 0x00, 0x00, 0x00, 0x0A, 0x49, 0x44, 0x41,
		0x54, 0x78, 0x9C, 0x63, 0x00, 0x01, 0x00, 0x00,
		0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00,
		0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE,
		0x42, 0x60, 0x82,
	}
}

// MP3Data returns a minimal MP3 frame header
func MP3Data() []byte {
	return []byte{0xFF, 0xFB, 0x90, 0x00, 0x00, 0x00, 0x00, 0x00}
}
