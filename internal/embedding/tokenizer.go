package embedding

import (
	"hash/fnv"
	"strings"
)

// BERT special token ids.
const (
	tokenCLS = 101
	tokenSEP = 102
)

// vocabBuckets bounds hashed token ids to a BERT-sized vocabulary.
const vocabBuckets = 30000

// wordTokenizer is a whitespace tokenizer with hash-bucketed token ids. It
// feeds BERT-style models (input_ids, attention_mask, token_type_ids) without
// shipping a vocabulary file; hashing keeps it deterministic.
type wordTokenizer struct{}

// tokenize splits text into words and produces the three padded id slices of
// length maxTokens expected by the model.
func (wordTokenizer) tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	if maxTokens <= 0 {
		maxTokens = 256
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)

	inputIDs[0] = tokenCLS
	attentionMask[0] = 1
	pos := 1
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if pos >= maxTokens-1 {
			break
		}
		h := fnv.New32a()
		h.Write([]byte(word))
		inputIDs[pos] = int64(h.Sum32() % vocabBuckets)
		attentionMask[pos] = 1
		pos++
	}
	if pos < maxTokens {
		inputIDs[pos] = tokenSEP
		attentionMask[pos] = 1
	}
	return inputIDs, attentionMask, tokenTypeIDs
}
