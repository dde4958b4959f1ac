package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMove_Beats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b Move
		want bool
	}{
		{Paper, Rock, true},
		{Scissors, Paper, true},
		{Rock, Scissors, true},
		{Rock, Paper, false},
		{Rock, Rock, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.a.Beats(tt.b), "%s vs %s", tt.a, tt.b)
	}

	_, ok := ParseMove("lizard")
	assert.False(t, ok)
	m, ok := ParseMove("rock")
	assert.True(t, ok)
	assert.Equal(t, Rock, m)
}

func TestPlayer_Inventory(t *testing.T) {
	t.Parallel()

	p := NewPlayer("u1", "Alice")
	assert.NotEmpty(t, p.ID)

	p.AddCar(&Car{ID: "c2", ListPrice: 5000})
	p.AddCar(&Car{ID: "c1", ListPrice: 4000})
	p.AddDcCard(&DcCard{ID: "d1", Bonus: 500})
	p.AddMoney(100)
	p.AddMoney(-30)

	assert.Equal(t, 70, p.Money())
	cars := p.Cars()
	require.Len(t, cars, 2)
	assert.Equal(t, "c1", cars[0].ID)

	_, ok := p.Car("c9")
	assert.False(t, ok)
	c, ok := p.RemoveCar("c2")
	assert.True(t, ok)
	assert.Equal(t, 5000, c.ListPrice)
	assert.Len(t, p.Cars(), 1)

	d, ok := p.DcCard("d1")
	assert.True(t, ok)
	assert.Equal(t, 500, d.Bonus)
	_, ok = p.RemoveDcCard("d1")
	assert.True(t, ok)
	assert.Empty(t, p.DcCards())
}

func TestTurnChoice_Valid(t *testing.T) {
	t.Parallel()

	assert.True(t, TurnDcCard.Valid())
	assert.True(t, TurnPass.Valid())
	assert.False(t, TurnChoice("fly").Valid())
}

func TestPreset_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultPreset().Validate())
	assert.Error(t, (&Preset{}).Validate())
	assert.Error(t, (&Preset{ID: "x"}).Validate())
	assert.Error(t, (&Preset{ID: "x", Turns: 1, StartingMoney: -1}).Validate())
}
