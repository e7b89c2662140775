package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddIsImmutable(t *testing.T) {
	orig := sample()[:1]
	got := Add(orig, sample()[1])

	assert.Len(t, orig, 1)
	assert.Len(t, got, 2)
	assert.Equal(t, "b", got[1].ID)
}

func TestUpdate(t *testing.T) {
	orig := sample()

	tests := []struct {
		name string
		id   string
		ep   Endpoint
		want Trendline
	}{
		{
			name: "start",
			id:   "a",
			ep:   Start,
			want: Trendline{ID: "a", StartTime: 1500, StartPrice: 42, EndTime: 2000, EndPrice: 55},
		},
		{
			name: "end",
			id:   "a",
			ep:   End,
			want: Trendline{ID: "a", StartTime: 1000, StartPrice: 50, EndTime: 1500, EndPrice: 42},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Update(orig, tt.id, tt.ep, 1500, 42)
			assert.Equal(t, tt.want, got[0])
			assert.Equal(t, orig[1], got[1])
			assert.Equal(t, sample(), orig, "input must not change")
		})
	}
}

func TestUpdateUnknownIDIsNoop(t *testing.T) {
	assert.Equal(t, sample(), Update(sample(), "nope", Start, 1, 1))
}

func TestRemove(t *testing.T) {
	got := Remove(sample(), "a")
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)

	assert.Equal(t, sample(), Remove(sample(), "nope"))
}

func TestClear(t *testing.T) {
	got := Clear()
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		in      string
		want    Endpoint
		wantErr bool
	}{
		{"start", Start, false},
		{"END", End, false},
		{"  end ", End, false},
		{"middle", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEndpoint(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDegenerate(t *testing.T) {
	assert.True(t, Trendline{StartTime: 5, EndTime: 5}.Degenerate())
	assert.False(t, Trendline{StartTime: 5, EndTime: 6}.Degenerate())
}
