// Package preferences converts category corrections into durable
// natural-language instructions, keyed by merchant so repeated corrections
// replace rather than accumulate.
package preferences

import (
	"context"
	"fmt"
	"strings"

	"jmoretti/finledger/internal/logging"
	"jmoretti/finledger/internal/models"
)

// Store is the persistence contract the learner consumes.
type Store interface {
	// UpsertLearnedPreference stores a learned instruction for a merchant,
	// replacing any existing learned entry for the same merchant.
	UpsertLearnedPreference(ctx context.Context, merchant, instruction string) (models.Preference, error)
	ListPreferences(ctx context.Context) ([]models.Preference, error)
}

// Learner records corrections as preferences.
type Learner struct {
	store  Store
	logger logging.Logger
}

func NewLearner(store Store, logger logging.Logger) *Learner {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Learner{store: store, logger: logger}
}

// Correction is one human category edit made after ingestion.
type Correction struct {
	Merchant    string
	Category    string
	Subcategory string
	IsTransfer  bool
}

// Instruction renders the correction in the canonical free-text form:
//
//	"<merchant>" should be categorized as <category>[ / <subcategory>][ (mark as transfer)]
func (c Correction) Instruction() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%q should be categorized as %s", c.Merchant, c.Category)
	if c.Subcategory != "" {
		fmt.Fprintf(&b, " / %s", c.Subcategory)
	}
	if c.IsTransfer {
		b.WriteString(" (mark as transfer)")
	}
	return b.String()
}

// Learn upserts the instruction for the correction's merchant. A later
// correction for the same merchant replaces the earlier one, never
// duplicates it.
func (l *Learner) Learn(ctx context.Context, c Correction) (models.Preference, error) {
	merchant := strings.TrimSpace(c.Merchant)
	if merchant == "" {
		return models.Preference{}, fmt.Errorf("correction has no merchant")
	}
	if strings.TrimSpace(c.Category) == "" {
		return models.Preference{}, fmt.Errorf("correction has no category")
	}

	pref, err := l.store.UpsertLearnedPreference(ctx, merchant, c.Instruction())
	if err != nil {
		return models.Preference{}, err
	}
	l.logger.Info("preference learned",
		logging.Field{Key: logging.FieldMerchant, Value: merchant},
		logging.Field{Key: logging.FieldCategory, Value: c.Category})
	return pref, nil
}

// Instructions returns all stored preference texts, for the AI tier's
// context. Satisfies categorizer.InstructionSource.
func (l *Learner) Instructions(ctx context.Context) ([]string, error) {
	prefs, err := l.store.ListPreferences(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(prefs))
	for _, p := range prefs {
		out = append(out, p.Instruction)
	}
	return out, nil
}
