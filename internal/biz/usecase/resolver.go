package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"sendlater/internal/biz/domain"
	"sendlater/internal/biz/repo"
)

const maxCandidates = 5

const aiNotFoundSentinel = "找不到"

// ResolverConfig contains the fuzzy-match thresholds (0-100)
type ResolverConfig struct {
	Floor      int // drop candidates below this score
	AutoAccept int // resolve without asking when the top score reaches this
}

// DefaultResolverConfig is the tuned default: 50 floor, 80 auto-accept
var DefaultResolverConfig = ResolverConfig{Floor: 50, AutoAccept: 80}

// ResolverUsecase maps a free-text name to zero, one, or many contacts.
// Tiers, in order of strictness: exact/substring, fuzzy partial-ratio,
// optional language-model fallback.
type ResolverUsecase struct {
	completion repo.CompletionRepo // nil disables the AI fallback
	cfg        ResolverConfig
	score      func(a, b string) int
}

// NewResolverUsecase creates a new resolver usecase
func NewResolverUsecase(completion repo.CompletionRepo, cfg ResolverConfig) *ResolverUsecase {
	if cfg.Floor <= 0 {
		cfg.Floor = DefaultResolverConfig.Floor
	}
	if cfg.AutoAccept <= 0 {
		cfg.AutoAccept = DefaultResolverConfig.AutoAccept
	}
	return &ResolverUsecase{
		completion: completion,
		cfg:        cfg,
		score:      fuzzy.PartialRatio,
	}
}

// SetScoreFunc replaces the similarity scorer (tests)
func (uc *ResolverUsecase) SetScoreFunc(f func(a, b string) int) {
	uc.score = f
}

// Resolve resolves query against the given contacts using the exact and
// fuzzy tiers only. Deterministic: no network calls.
func (uc *ResolverUsecase) Resolve(query string, contacts []*domain.Contact) *domain.Resolution {
	if len(contacts) == 0 {
		return domain.NotFound()
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return domain.NotFound()
	}

	// exact/substring pass, first match in store order wins
	for _, c := range contacts {
		name := strings.ToLower(c.Name)
		lineName := strings.ToLower(c.LineName)
		if q == name || q == lineName ||
			(name != "" && strings.Contains(name, q)) ||
			(lineName != "" && strings.Contains(lineName, q)) ||
			(name != "" && strings.Contains(q, name)) {
			return domain.Found(c)
		}
	}

	// fuzzy pass
	type scored struct {
		score   int
		contact *domain.Contact
	}
	var candidates []scored
	for _, c := range contacts {
		s := uc.score(q, strings.ToLower(c.Name))
		if ls := uc.score(q, strings.ToLower(c.LineName)); ls > s {
			s = ls
		}
		if s >= uc.cfg.Floor {
			candidates = append(candidates, scored{score: s, contact: c})
		}
	}
	if len(candidates) == 0 {
		return domain.NotFound()
	}

	// descending by score, stable on store order for ties
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if candidates[0].score >= uc.cfg.AutoAccept {
		return domain.Found(candidates[0].contact)
	}

	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	result := make([]*domain.Contact, len(candidates))
	for i, c := range candidates {
		result[i] = c.contact
	}
	return domain.Ambiguous(result)
}

// ResolveWithFallback resolves query, escalating a NotFound to the
// language model when one is configured. Any model error or an
// unmatched reply is equivalent to NotFound.
func (uc *ResolverUsecase) ResolveWithFallback(ctx context.Context, query string, contacts []*domain.Contact) *domain.Resolution {
	res := uc.Resolve(query, contacts)
	if res.Kind != domain.ResolutionNotFound {
		return res
	}

	contact := uc.resolveAI(ctx, query, contacts)
	if contact == nil {
		return domain.NotFound()
	}
	found := domain.Found(contact)
	found.AIAssisted = true
	return found
}

// resolveAI asks the language model to pick a contact from the full
// list. The reply is matched by substring containment against stored
// names, mirroring how users abbreviate; an exact sentinel means no match.
func (uc *ResolverUsecase) resolveAI(ctx context.Context, query string, contacts []*domain.Contact) *domain.Contact {
	if uc.completion == nil || len(contacts) == 0 {
		return nil
	}

	var sb strings.Builder
	for _, c := range contacts {
		sb.WriteString(fmt.Sprintf("- %s (%s)\n", c.Name, c.LineName))
	}
	prompt := fmt.Sprintf("從清單找「%s」，只回覆名字或「%s」：\n%s", query, aiNotFoundSentinel, sb.String())

	reply, err := uc.completion.Complete(ctx, prompt)
	if err != nil {
		fmt.Printf("[Resolver] AI fallback error: %v\n", err)
		return nil
	}

	reply = strings.TrimSpace(reply)
	if reply == "" || reply == aiNotFoundSentinel {
		return nil
	}

	for _, c := range contacts {
		if (c.Name != "" && strings.Contains(c.Name, reply)) ||
			(c.LineName != "" && strings.Contains(c.LineName, reply)) {
			return c
		}
	}
	return nil
}
