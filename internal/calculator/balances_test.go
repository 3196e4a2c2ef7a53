package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/billbuddy/internal/models"
	"github.com/mmynk/billbuddy/internal/money"
)

func TestCalculateRoomBalances(t *testing.T) {
	a := activity("dinner", "alice", 10000, 5000, 0,
		item("platter", 100000, "alice", "bob"),
	)

	balances := CalculateRoomBalances([]models.Activity{a}, []string{"carol", "bob", "alice"})
	require.Len(t, balances, 3)

	assert.Equal(t, "carol", balances[0].UserID)
	assert.True(t, balances[0].Net.IsZero())

	assert.Equal(t, "bob", balances[1].UserID)
	assert.Equal(t, int64(-57500), money.Round(balances[1].Net))

	assert.Equal(t, "alice", balances[2].UserID)
	assert.Equal(t, int64(115000), money.Round(balances[2].Paid))
	assert.Equal(t, int64(57500), money.Round(balances[2].Owed))
	assert.Equal(t, int64(57500), money.Round(balances[2].Net))
}

func TestCalculateRoomBalances_FormerMembersAppendedByID(t *testing.T) {
	a := activity("taxi", "zoe", 0, 0, 0, item("ride", 30000, "alice", "yusuf"))

	balances := CalculateRoomBalances([]models.Activity{a}, []string{"alice"})
	ids := make([]string, 0, len(balances))
	for _, b := range balances {
		ids = append(ids, b.UserID)
	}
	assert.Equal(t, []string{"alice", "yusuf", "zoe"}, ids)
}

func TestCalculateRoomBalances_SumToZero(t *testing.T) {
	activities := []models.Activity{
		activity("breakfast", "alice", 1100, 0, 300, item("toast", 20001, "alice", "bob", "carol")),
		activity("lunch", "bob", 0, 2000, 0, item("salad", 15000, "alice", "bob"), item("juice", 7777)),
		activity("dinner", "carol", 4500, 2250, 1000, item("steak", 45000, "alice", "bob", "carol"), item("wine", 33333, "carol", "dave")),
	}

	balances := CalculateRoomBalances(activities, []string{"alice", "bob", "carol", "dave"})
	sum := decimal.Zero
	for _, b := range balances {
		sum = sum.Add(b.Net)
	}
	assert.True(t, sum.IsZero(), "balances sum to %s", sum)
}

func TestPlanSettlement(t *testing.T) {
	tests := []struct {
		name     string
		balances []MemberBalance
		floor    int64
		want     []Transfer
	}{
		{
			name: "one creditor two debtors",
			balances: []MemberBalance{
				{UserID: "alice", Net: d(40000)},
				{UserID: "bob", Net: d(-25000)},
				{UserID: "carol", Net: d(-15000)},
			},
			floor: 10,
			want: []Transfer{
				{FromID: "bob", ToID: "alice", Amount: d(25000)},
				{FromID: "carol", ToID: "alice", Amount: d(15000)},
			},
		},
		{
			name: "ties broken by user id",
			balances: []MemberBalance{
				{UserID: "alice", Net: d(30000)},
				{UserID: "bob", Net: d(20000)},
				{UserID: "dave", Net: d(-25000)},
				{UserID: "carol", Net: d(-25000)},
			},
			floor: 10,
			want: []Transfer{
				{FromID: "carol", ToID: "alice", Amount: d(25000)},
				{FromID: "dave", ToID: "alice", Amount: d(5000)},
				{FromID: "dave", ToID: "bob", Amount: d(20000)},
			},
		},
		{
			name: "remainder exactly at the floor is still settled",
			balances: []MemberBalance{
				{UserID: "alice", Net: d(40)},
				{UserID: "dave", Net: d(11)},
				{UserID: "bob", Net: d(-50)},
				{UserID: "erin", Net: d(-1)},
			},
			floor: 10,
			want: []Transfer{
				{FromID: "bob", ToID: "alice", Amount: d(40)},
				{FromID: "bob", ToID: "dave", Amount: d(10)},
			},
		},
		{
			name: "zero floor settles to the last unit",
			balances: []MemberBalance{
				{UserID: "alice", Net: d(3)},
				{UserID: "bob", Net: d(-2)},
				{UserID: "carol", Net: d(-1)},
			},
			floor: 0,
			want: []Transfer{
				{FromID: "bob", ToID: "alice", Amount: d(2)},
				{FromID: "carol", ToID: "alice", Amount: d(1)},
			},
		},
		{
			name: "balances within the floor need nothing",
			balances: []MemberBalance{
				{UserID: "alice", Net: d(5)},
				{UserID: "bob", Net: d(-5)},
			},
			floor: 10,
			want:  nil,
		},
		{
			name: "already settled",
			balances: []MemberBalance{
				{UserID: "alice", Net: decimal.Zero},
			},
			floor: 0,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlanSettlement(tt.balances, d(tt.floor))
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i].FromID, got[i].FromID)
				assert.Equal(t, tt.want[i].ToID, got[i].ToID)
				assert.True(t, tt.want[i].Amount.Equal(got[i].Amount), "amount %s, want %s", got[i].Amount, tt.want[i].Amount)
			}
		})
	}
}

func TestPlanSettlement_ConservesBalances(t *testing.T) {
	activities := []models.Activity{
		activity("breakfast", "alice", 1100, 0, 300, item("toast", 20001, "alice", "bob", "carol")),
		activity("lunch", "bob", 0, 2000, 0, item("salad", 15000, "alice", "bob", "dave")),
		activity("dinner", "carol", 4500, 2250, 1000, item("steak", 45000, "alice", "bob", "carol"), item("wine", 33333, "carol", "dave")),
	}
	balances := CalculateRoomBalances(activities, []string{"alice", "bob", "carol", "dave"})

	for _, floor := range []int64{0, 10} {
		transfers := PlanSettlement(balances, d(floor))

		moved := make(map[string]decimal.Decimal)
		for _, tr := range transfers {
			assert.True(t, tr.Amount.IsPositive())
			assert.NotEqual(t, tr.FromID, tr.ToID)
			moved[tr.FromID] = moved[tr.FromID].Sub(tr.Amount)
			moved[tr.ToID] = moved[tr.ToID].Add(tr.Amount)
		}

		tolerance := d(floor * int64(len(balances)))
		for _, b := range balances {
			assert.True(t, money.Within(moved[b.UserID], b.Net, tolerance),
				"floor %d: %s moved %s but net is %s", floor, b.UserID, moved[b.UserID], b.Net)
		}
	}
}

func TestPlanSettlement_NegativeFloorTreatedAsZero(t *testing.T) {
	balances := []MemberBalance{
		{UserID: "alice", Net: d(100)},
		{UserID: "bob", Net: d(-100)},
	}
	got := PlanSettlement(balances, d(-50))
	require.Len(t, got, 1)
	assert.True(t, got[0].Amount.Equal(d(100)))
}
