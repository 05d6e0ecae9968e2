package wordlist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
)

// ErrNotEnoughWords is returned when a sample larger than the list is requested
var ErrNotEnoughWords = errors.New("not enough words in the word list")

// LoadWordList reads all whitespace-delimited words from a file
func LoadWordList(filename string) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to load word list: %w", err)
	}
	defer file.Close()

	words, err := ParseWords(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load word list: %w", err)
	}
	return words, nil
}

// ParseWords splits the content of r into words, line by line, keeping order.
// Blank lines and CRLF line endings are tolerated.
func ParseWords(r io.Reader) ([]string, error) {
	var words []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		words = append(words, strings.Fields(scanner.Text())...)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return words, nil
}

// Tokenize splits free text typed by the user into words
func Tokenize(text string) []string {
	return strings.Fields(text)
}

// Dedupe removes repeated words, keeping the first occurrence
func Dedupe(words []string) []string {
	seen := make(map[string]bool, len(words))
	result := make([]string, 0, len(words))
	for _, w := range words {
		if seen[w] {
			continue
		}
		seen[w] = true
		result = append(result, w)
	}
	return result
}

// SampleWords picks n distinct positions of words at random.
// A nil rng uses the global source.
func SampleWords(words []string, n int, rng *rand.Rand) ([]string, error) {
	if n < 1 {
		return nil, fmt.Errorf("sample size must be at least 1, got %d", n)
	}
	if len(words) < n {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughWords, len(words), n)
	}

	perm := rand.Perm
	if rng != nil {
		perm = rng.Perm
	}

	sample := make([]string, 0, n)
	for _, idx := range perm(len(words))[:n] {
		sample = append(sample, words[idx])
	}
	return sample, nil
}
