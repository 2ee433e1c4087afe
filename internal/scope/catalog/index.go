package catalog

import (
	"strings"
	"sync"
	"unicode"

	"github.com/tchap/go-patricia/v2/patricia"
)

// idSet is the trie item: the IDs of products containing a token
type idSet map[string]struct{}

// Index is a token-prefix index over product names and SKUs.
// Every token maps to the set of product IDs that contain it.
type Index struct {
	mu     sync.RWMutex
	trie   *patricia.Trie
	tokens map[string][]string // product ID -> indexed tokens
}

// NewIndex creates an empty index
func NewIndex() *Index {
	return &Index{
		trie:   patricia.NewTrie(),
		tokens: make(map[string][]string),
	}
}

// Tokenize lowercases text and splits it on anything that is not a letter or digit
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Put indexes a product, replacing any previous tokens for the same ID
func (x *Index) Put(p Product) {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.remove(p.ID)

	tokens := uniqueTokens(Tokenize(p.Name + " " + p.SKU))
	for _, tok := range tokens {
		key := patricia.Prefix(tok)
		if item := x.trie.Get(key); item != nil {
			item.(idSet)[p.ID] = struct{}{}
			continue
		}
		x.trie.Insert(key, idSet{p.ID: {}})
	}
	x.tokens[p.ID] = tokens
}

// Remove drops a product from the index
func (x *Index) Remove(id string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.remove(id)
}

func (x *Index) remove(id string) {
	for _, tok := range x.tokens[id] {
		key := patricia.Prefix(tok)
		item := x.trie.Get(key)
		if item == nil {
			continue
		}
		set := item.(idSet)
		delete(set, id)
		if len(set) == 0 {
			x.trie.Delete(key)
		}
	}
	delete(x.tokens, id)
}

// Match returns the IDs of products where every query token prefixes
// some token of the product. An empty query matches nothing.
func (x *Index) Match(text string) map[string]struct{} {
	queryTokens := uniqueTokens(Tokenize(text))
	if len(queryTokens) == 0 {
		return nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	var matched map[string]struct{}
	for _, tok := range queryTokens {
		hits := make(map[string]struct{})
		_ = x.trie.VisitSubtree(patricia.Prefix(tok), func(_ patricia.Prefix, item patricia.Item) error {
			for id := range item.(idSet) {
				if matched == nil {
					hits[id] = struct{}{}
				} else if _, ok := matched[id]; ok {
					hits[id] = struct{}{}
				}
			}
			return nil
		})
		if len(hits) == 0 {
			return nil
		}
		matched = hits
	}
	return matched
}

// Len returns the number of indexed products
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.tokens)
}

func uniqueTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0]
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}
