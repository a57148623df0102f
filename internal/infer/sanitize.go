package infer

import (
	"github.com/tordrt/inferschema/internal/config"
	"github.com/tordrt/inferschema/internal/logger"
	"github.com/tordrt/inferschema/internal/schema"
)

// Sanitizer removes foreign keys that generated join code cannot use.
// Dropped constraints are logged, never reported as errors.
type Sanitizer struct {
	policy config.ForeignKeyPolicy
	log    *logger.Logger
}

// NewSanitizer creates a Sanitizer. A nil log discards output.
func NewSanitizer(policy config.ForeignKeyPolicy, log *logger.Logger) *Sanitizer {
	if log == nil {
		log = logger.Nop()
	}
	return &Sanitizer{policy: policy, log: log}
}

// Sanitize sanitizes raw with the default policy
func Sanitize(raw []schema.ForeignKeyConstraint, known []schema.Table) []schema.ForeignKeyConstraint {
	return NewSanitizer(config.DefaultPolicy().ForeignKeys, nil).Sanitize(raw, known)
}

// Sanitize returns the constraints of raw that are safe for code
// generation, in their original order. known holds the validated tables
// of the run; a constraint touching any other table is dropped.
func (s *Sanitizer) Sanitize(raw []schema.ForeignKeyConstraint, known []schema.Table) []schema.ForeignKeyConstraint {
	tables := make(map[schema.TableIdentifier]schema.PrimaryKeySet, len(known))
	for _, t := range known {
		tables[t.ID] = t.PrimaryKey
	}

	pairs := make(map[[2]schema.TableIdentifier]int, len(raw))
	for _, fk := range raw {
		pairs[fk.OrderedTables()]++
	}

	out := make([]schema.ForeignKeyConstraint, 0, len(raw))
	for _, fk := range raw {
		if reason, drop := s.dropReason(fk, tables, pairs); drop {
			s.logDrop(fk, reason)
			continue
		}
		out = append(out, fk)
	}
	return out
}

const (
	reasonSelfReferential = "self-referential"
	reasonUnknownTable    = "references a table outside this run"
	reasonParentKey       = "does not reference the parent's single-column primary key"
	reasonAmbiguous       = "ambiguous: several foreign keys join the same tables"
)

func (s *Sanitizer) dropReason(
	fk schema.ForeignKeyConstraint,
	tables map[schema.TableIdentifier]schema.PrimaryKeySet,
	pairs map[[2]schema.TableIdentifier]int,
) (string, bool) {
	if s.policy.DropSelfReferential && fk.ChildTable == fk.ParentTable {
		return reasonSelfReferential, true
	}

	if _, ok := tables[fk.ChildTable]; !ok {
		return reasonUnknownTable, true
	}
	parentKey, ok := tables[fk.ParentTable]
	if !ok {
		return reasonUnknownTable, true
	}

	if s.policy.RequireParentPrimaryKey {
		if len(parentKey) != 1 {
			return reasonParentKey, true
		}
		if fk.ParentColumn != "" && fk.ParentColumn != parentKey[0] {
			return reasonParentKey, true
		}
	}

	if s.policy.DropAmbiguous && pairs[fk.OrderedTables()] > 1 {
		return reasonAmbiguous, true
	}

	return "", false
}

func (s *Sanitizer) logDrop(fk schema.ForeignKeyConstraint, reason string) {
	log := s.log.With().
		Str("child", fk.ChildTable.String()).
		Str("parent", fk.ParentTable.String()).
		Str("column", fk.ForeignKeyColumn).
		Str("reason", reason).
		Logger()

	if reason == reasonUnknownTable && s.policy.UnknownTables == config.UnknownTablesWarn {
		log.Warn("dropping foreign key")
		return
	}
	log.Debug("dropping foreign key")
}
