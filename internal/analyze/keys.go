package analyze

import (
	"strings"

	"mdb-audit/internal/dialect"
	"mdb-audit/internal/profile"
	"mdb-audit/internal/schema"
)

const maxOrphanSamples = 5

// DetectPrimaryKey picks at most one key column. The checks run in fixed
// order and the first hit wins: declared constraint, integer column named
// ID, non-nullable business key, first fully unique non-null column.
func DetectPrimaryKey(t *schema.TableDetail, q *schema.TableQuality, businessKeys []string) (string, string) {
	if t.DeclaredPK != "" {
		return t.DeclaredPK, schema.PKSchemaDeclared
	}

	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, "ID") && dialect.IsIntegerType(c.Type) {
			return c.Name, schema.PKAutoNumberID
		}
	}

	for _, key := range businessKeys {
		for _, c := range t.Columns {
			if strings.EqualFold(c.Name, key) && !c.Nullable {
				return c.Name, schema.PKBusinessKey
			}
		}
	}

	if q != nil && q.RowCount > 0 {
		for _, c := range t.Columns {
			cq, ok := q.Column(c.Name)
			if ok && cq.NullCount == 0 && cq.DistinctCount == q.RowCount {
				return c.Name, schema.PKInferredUnique
			}
		}
	}
	return "", ""
}

// ClassifyConfidence grades how well a candidate column's values fit a
// reference key set. It also returns how many candidate values matched.
func ClassifyConfidence(ref, values map[string]struct{}) (string, int) {
	matched := 0
	for v := range values {
		if _, ok := ref[v]; ok {
			matched++
		}
	}
	switch {
	case len(values) == 0 || matched == 0:
		return schema.ConfidenceLow, matched
	case matched == len(values):
		return schema.ConfidenceHigh, matched
	default:
		return schema.ConfidenceMedium, matched
	}
}

// ExactNameMatch builds the inferred key for a column that shares the
// reference key's name.
func ExactNameMatch(sourceTable, refTable, refKey string, ref, values map[string]struct{}) schema.InferredForeignKey {
	confidence, matched := ClassifyConfidence(ref, values)
	return schema.InferredForeignKey{
		SourceTable:   sourceTable,
		SourceColumn:  refKey,
		TargetTable:   refTable,
		TargetColumn:  refKey,
		Confidence:    confidence,
		Pattern:       schema.PatternExactName,
		MatchedValues: matched,
		TotalValues:   len(values),
		MatchPercent:  profile.Percent(matched, len(values)),
	}
}

// SuffixMatches guesses references from *_id and *_code column names by
// looking for another table whose name contains the stem. Columns already
// covered by known keys are skipped. Every guess is low confidence.
func SuffixMatches(tables []*schema.TableDetail, known []schema.InferredForeignKey) []schema.InferredForeignKey {
	seen := make(map[string]bool, len(known))
	for _, fk := range known {
		seen[fk.SourceTable+"."+fk.SourceColumn] = true
	}

	out := []schema.InferredForeignKey{}
	for _, t := range tables {
		for _, c := range t.Columns {
			if seen[t.Name+"."+c.Name] {
				continue
			}
			stem := referenceStem(c.PgName)
			if stem == "" {
				continue
			}
			target := findTableByStem(tables, t.Name, stem)
			if target == nil {
				continue
			}
			targetCol := target.PrimaryKey
			if targetCol == "" {
				targetCol = c.Name
			}
			out = append(out, schema.InferredForeignKey{
				SourceTable:  t.Name,
				SourceColumn: c.Name,
				TargetTable:  target.Name,
				TargetColumn: targetCol,
				Confidence:   schema.ConfidenceLow,
				Pattern:      schema.PatternSuffix,
			})
		}
	}
	return out
}

func referenceStem(pgName string) string {
	for _, suffix := range []string{"_id", "_code"} {
		if strings.HasSuffix(pgName, suffix) {
			return strings.TrimSuffix(pgName, suffix)
		}
	}
	return ""
}

func findTableByStem(tables []*schema.TableDetail, self, stem string) *schema.TableDetail {
	for _, t := range tables {
		if t.Name == self {
			continue
		}
		if strings.Contains(t.PgName, stem) {
			return t
		}
	}
	return nil
}

// FindOrphans counts rows whose reference column holds a value missing from
// the reference set. Nulls are not orphans.
func FindOrphans(table, refTable, refKey string, ref map[string]struct{}, frame *profile.Frame) schema.OrphanReport {
	rep := schema.OrphanReport{
		Table:         table,
		Column:        refKey,
		RefTable:      refTable,
		RefColumn:     refKey,
		TotalRows:     frame.Len(),
		SampleOrphans: []string{},
	}

	sampled := make(map[string]bool)
	for row := 0; row < frame.Len(); row++ {
		v, ok := frame.Value(row, refKey)
		if !ok {
			continue
		}
		key := profile.Canonical(v)
		if _, found := ref[key]; found {
			continue
		}
		rep.OrphanCount++
		if !sampled[key] && len(rep.SampleOrphans) < maxOrphanSamples {
			sampled[key] = true
			rep.SampleOrphans = append(rep.SampleOrphans, key)
		}
	}
	rep.OrphanPercent = profile.Percent(rep.OrphanCount, rep.TotalRows)
	return rep
}
