package fact_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pactlint/pactlint/internal/domain/fact"
)

func fileWith(file string, facts ...fact.Fact) *fact.FileFacts {
	return &fact.FileFacts{File: file, Facts: facts, Paths: fact.NewInterner()}
}

func TestSet_LookupByKey(t *testing.T) {
	s := fact.NewSet([]*fact.FileFacts{
		fileWith("client.go",
			fact.Fact{Kind: fact.SentField, EndpointID: "POST /orders", FieldPath: "amount"},
			fact.Fact{Kind: fact.SentField, EndpointID: "POST /orders", FieldPath: "currency"},
			fact.Fact{Kind: fact.ConsumedField, EndpointID: "POST /orders", FieldPath: "order_id"},
		),
	})

	assert.Len(t, s.Lookup("POST /orders", fact.SentField, "amount"), 1)
	assert.Empty(t, s.Lookup("POST /orders", fact.SentField, "order_id"))
	assert.Empty(t, s.Lookup("GET /orders", fact.SentField, "amount"))
}

func TestSet_ByKindSortedBySite(t *testing.T) {
	s := fact.NewSet([]*fact.FileFacts{
		fileWith("b.go", fact.Fact{Kind: fact.StatusBranch, EndpointID: "GET /x", Loc: fact.Location{File: "b.go", Line: 4}}),
		fileWith("a.go",
			fact.Fact{Kind: fact.StatusBranch, EndpointID: "GET /x", Loc: fact.Location{File: "a.go", Line: 9}},
			fact.Fact{Kind: fact.StatusBranch, EndpointID: "GET /x", Loc: fact.Location{File: "a.go", Line: 2}},
		),
	})

	facts := s.ByKind("GET /x", fact.StatusBranch)
	require.Len(t, facts, 3)
	assert.Equal(t, "a.go", facts[0].Loc.File)
	assert.Equal(t, 2, facts[0].Loc.Line)
	assert.Equal(t, 9, facts[1].Loc.Line)
	assert.Equal(t, "b.go", facts[2].Loc.File)
}

func TestSet_Empty(t *testing.T) {
	var nilSet *fact.Set
	assert.True(t, nilSet.Empty())
	assert.True(t, fact.NewSet(nil).Empty())
	assert.False(t, fact.NewSet([]*fact.FileFacts{fileWith("a.go")}).Empty())
}

func TestSet_TaintFromSkippedFile(t *testing.T) {
	clean := fact.NewSet([]*fact.FileFacts{fileWith("a.go")})
	assert.False(t, clean.Tainted())
	assert.Equal(t, fact.Certain, clean.AbsenceConfidence())

	tainted := fact.NewSet([]*fact.FileFacts{
		fileWith("a.go"),
		{File: "broken.go", Skipped: true},
	})
	assert.True(t, tainted.Tainted())
	assert.Equal(t, fact.Inferred, tainted.AbsenceConfidence())
}

func TestSet_TaintFromPartialFile(t *testing.T) {
	s := fact.NewSet([]*fact.FileFacts{
		{File: "half.go", Partial: true, Facts: []fact.Fact{
			{Kind: fact.SentField, EndpointID: "POST /y", FieldPath: "name"},
		}},
	})
	// Partial files still contribute their facts, but absence claims lose
	// certainty.
	assert.Len(t, s.Lookup("POST /y", fact.SentField, "name"), 1)
	assert.Equal(t, fact.Inferred, s.AbsenceConfidence())
}

func TestInterner_CanonicalizesAcrossShards(t *testing.T) {
	a := fact.NewInterner()
	b := fact.NewInterner()
	a.Intern("customer.address.city")
	a.Intern("amount")
	b.Intern("customer.address.city")

	merged := fact.MergeInterners(a, b, nil)
	assert.Equal(t, 2, merged.Len())
	assert.Equal(t, "amount", merged.Intern("amount"))
}

func TestInterner_InternIsIdempotent(t *testing.T) {
	i := fact.NewInterner()
	first := i.Intern("items.sku")
	second := i.Intern("items.sku")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, i.Len())
}
