package alert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_RegistryInvariants(t *testing.T) {
	for _, m := range All() {
		if m.AlwaysFatal {
			assert.True(t, m.DefaultFatal, "%s: always-fatal implies default-fatal", m.Code)
		}
		// suppression is one-way: a suppressor never lists the code it
		// suppresses in its own SuppressedBy
		for _, sup := range m.SuppressedBy {
			sm, ok := Lookup(sup)
			require.True(t, ok, "%s: suppressor %s not in registry", m.Code, sup)
			assert.Equal(t, m.PerFeature, sm.PerFeature,
				"%s suppressed by %s across the sequence/feature divide", m.Code, sup)
			for _, back := range sm.SuppressedBy {
				assert.NotEqual(t, m.Code, back, "mutual suppression between %s and %s", m.Code, sup)
			}
		}
	}
}

func Test_NewOptions_Directions(t *testing.T) {
	tests := []struct {
		name    string
		pass    []string
		fail    []string
		wantErr bool
	}{
		{"empty", nil, nil, false},
		{"pass a default-fatal code", []string{"dupregin"}, nil, false},
		{"fail a default-non-fatal code", nil, []string{"insertnn"}, false},
		{"pass an always-fatal code", []string{"noannotn"}, nil, true},
		{"pass a non-fatal code", []string{"insertnn"}, nil, true},
		{"fail a fatal code", nil, []string{"dupregin"}, true},
		{"unknown code", []string{"nosuchcd"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOptions(tt.pass, tt.fail, nil, nil)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func Test_IsFatal(t *testing.T) {
	opts, err := NewOptions([]string{"dupregin"}, []string{"insertnn"}, nil, nil)
	require.NoError(t, err)

	assert.False(t, opts.IsFatal(DupRegin), "pass-listed code stays non-fatal")
	assert.True(t, opts.IsFatal(InsertNn), "fail-listed code becomes fatal")
	assert.True(t, opts.IsFatal(NoAnnotn), "always-fatal ignores everything")
	assert.True(t, opts.IsFatal(MutStart), "default fatal unchanged")
	assert.False(t, opts.IsFatal(QstGroup), "default non-fatal unchanged")
}

func Test_Resolve_ExpendableDemotion(t *testing.T) {
	opts := DefaultOptions()
	alerts := []Alert{
		NewFeature("seq1", "NC_TEST", 0, MutStart, nil, nil, "invalid start codon CTT"),
		NewFeature("seq1", "NC_TEST", 1, MutStart, nil, nil, "invalid start codon CTT"),
	}
	expendable := func(i int) bool { return i == 0 }

	rs := Resolve(alerts, opts, expendable)
	require.Len(t, rs, 2)
	assert.Equal(t, NonFatal, rs[0].Status)
	assert.True(t, rs[0].Demoted)
	assert.Equal(t, Fatal, rs[1].Status)
	assert.False(t, rs[1].Demoted)
}

func Test_Resolve_DemoteRemove(t *testing.T) {
	opts, err := NewOptions(nil, nil, nil, []string{"mutstart"})
	require.NoError(t, err)

	rs := Resolve(
		[]Alert{NewFeature("seq1", "NC_TEST", 0, MutStart, nil, nil, "")},
		opts,
		func(int) bool { return true },
	)
	assert.Equal(t, Fatal, rs[0].Status, "removed from the demotable set, expendable no longer helps")
}

func Test_Suppression(t *testing.T) {
	opts := DefaultOptions()

	// mutendcd co-occurring with cdsstopn on the same feature is
	// suppressed; on a different feature it is not
	rs := Resolve([]Alert{
		NewFeature("seq1", "NC_TEST", 0, MutEndCd, nil, nil, ""),
		NewFeature("seq1", "NC_TEST", 0, CdsStopN, nil, nil, ""),
		NewFeature("seq1", "NC_TEST", 1, MutEndCd, nil, nil, ""),
	}, opts, func(int) bool { return false })

	assert.True(t, rs[0].Suppressed, "mutendcd next to cdsstopn")
	assert.False(t, rs[1].Suppressed, "cdsstopn is never suppressed by mutendcd")
	assert.False(t, rs[2].Suppressed, "no co-occurring suppressor on feature 1")

	// suppression never changes pass/fail status
	assert.Equal(t, Fatal, rs[0].Status)
}

func Test_Sort(t *testing.T) {
	rs := []Resolved{
		{Alert: NewFeature("s", "m", 1, MutStart, nil, nil, "")},
		{Alert: New("s", "m", DupRegin, nil, nil, "")},
		{Alert: NewFeature("s", "m", 0, UnexLeng, nil, nil, "")},
		{Alert: NewFeature("s", "m", 0, MutStart, nil, nil, "")},
	}
	Sort(rs)

	assert.Equal(t, NoFeature, rs[0].FeatureIdx, "sequence-level first")
	assert.Equal(t, 0, rs[1].FeatureIdx)
	assert.Equal(t, MutStart, rs[1].Code, "registry order within a feature")
	assert.Equal(t, UnexLeng, rs[2].Code)
	assert.Equal(t, 1, rs[3].FeatureIdx)
}
