package game

import (
	"errors"
	"testing"
)

func seatPlayers(t *testing.T, table *Table, stacks map[int]int) {
	t.Helper()
	for seat, chips := range stacks {
		p := &Player{ID: "p" + string(rune('0'+seat)), Chips: chips}
		if err := table.Seat(p, seat); err != nil {
			t.Fatalf("seat %d: %v", seat, err)
		}
	}
}

func TestSeatErrors(t *testing.T) {
	t.Parallel()

	table := NewTable(Blinds{Small: 10, Big: 20})
	if err := table.Seat(&Player{ID: "alice", Chips: 100}, 3); err != nil {
		t.Fatalf("seat: %v", err)
	}

	tests := []struct {
		name string
		id   string
		seat int
		want error
	}{
		{"occupied", "bob", 3, ErrSeatTaken},
		{"zero", "bob", 0, ErrInvalidSeat},
		{"too high", "bob", MaxSeats + 1, ErrInvalidSeat},
		{"duplicate id", "alice", 4, ErrDuplicatePlayer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := table.Seat(&Player{ID: tt.id, Chips: 100}, tt.seat)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if !IsValidation(err) {
				t.Fatalf("expected a ValidationError, got %T", err)
			}
		})
	}
	if table.Occupied() != 1 {
		t.Fatalf("failed seats must not change the table, occupied=%d", table.Occupied())
	}
}

func TestAssignRolesFirstHandUsesLowestSeat(t *testing.T) {
	t.Parallel()

	table := NewTable(Blinds{Small: 10, Big: 20})
	seatPlayers(t, table, map[int]int{4: 100, 7: 100, 2: 100})

	if err := table.AssignRolesForNewHand(); err != nil {
		t.Fatal(err)
	}
	if table.DealerSeat() != 2 || table.SmallBlindSeat() != 4 || table.BigBlindSeat() != 7 {
		t.Fatalf("roles = D%d SB%d BB%d, want D2 SB4 BB7",
			table.DealerSeat(), table.SmallBlindSeat(), table.BigBlindSeat())
	}
	if !table.Player(2).IsDealer || !table.Player(4).IsSmallBlind || !table.Player(7).IsBigBlind {
		t.Fatal("role flags not set")
	}
}

func TestAssignRolesHeadsUpDealerPostsSmallBlind(t *testing.T) {
	t.Parallel()

	table := NewTable(Blinds{Small: 10, Big: 20})
	seatPlayers(t, table, map[int]int{3: 100, 8: 100})

	for _, want := range []struct{ dealer, bb int }{{3, 8}, {8, 3}, {3, 8}} {
		if err := table.AssignRolesForNewHand(); err != nil {
			t.Fatal(err)
		}
		if table.DealerSeat() != want.dealer || table.SmallBlindSeat() != want.dealer || table.BigBlindSeat() != want.bb {
			t.Fatalf("roles = D%d SB%d BB%d, want D%d SB%d BB%d",
				table.DealerSeat(), table.SmallBlindSeat(), table.BigBlindSeat(), want.dealer, want.dealer, want.bb)
		}
	}
}

func TestDealerRotationHasPeriodOfSeatedPlayers(t *testing.T) {
	t.Parallel()

	table := NewTable(Blinds{Small: 10, Big: 20})
	seatPlayers(t, table, map[int]int{1: 100, 3: 100, 6: 100, 9: 100})

	var seq []int
	for range 12 {
		if err := table.AssignRolesForNewHand(); err != nil {
			t.Fatal(err)
		}
		seq = append(seq, table.DealerSeat())
	}
	want := []int{1, 3, 6, 9}
	for i, d := range seq {
		if d != want[i%4] {
			t.Fatalf("dealer sequence %v, want cycle %v", seq, want)
		}
	}
}

func TestAssignRolesSkipsBustedAndSittingOut(t *testing.T) {
	t.Parallel()

	table := NewTable(Blinds{Small: 10, Big: 20})
	seatPlayers(t, table, map[int]int{1: 100, 2: 0, 3: 100, 4: 100})
	if err := table.SitOut(3); err != nil {
		t.Fatal(err)
	}

	if err := table.AssignRolesForNewHand(); err != nil {
		t.Fatal(err)
	}
	if table.Player(2).Status != SittingOut || table.Player(3).Status != SittingOut {
		t.Fatalf("statuses = %s, %s; want sitting_out", table.Player(2).Status, table.Player(3).Status)
	}
	// Heads-up between 1 and 4.
	if table.DealerSeat() != 1 || table.SmallBlindSeat() != 1 || table.BigBlindSeat() != 4 {
		t.Fatalf("roles = D%d SB%d BB%d", table.DealerSeat(), table.SmallBlindSeat(), table.BigBlindSeat())
	}

	if err := table.SitIn(3); err != nil {
		t.Fatal(err)
	}
	if err := table.AssignRolesForNewHand(); err != nil {
		t.Fatal(err)
	}
	if table.DealerSeat() != 3 || table.SmallBlindSeat() != 4 || table.BigBlindSeat() != 1 {
		t.Fatalf("roles = D%d SB%d BB%d, want D3 SB4 BB1", table.DealerSeat(), table.SmallBlindSeat(), table.BigBlindSeat())
	}
}

func TestAssignRolesNeedsTwoPlayers(t *testing.T) {
	t.Parallel()

	table := NewTable(Blinds{Small: 10, Big: 20})
	seatPlayers(t, table, map[int]int{5: 100, 6: 0})

	err := table.AssignRolesForNewHand()
	if !errors.Is(err, ErrNotEnoughPlayers) {
		t.Fatalf("got %v, want ErrNotEnoughPlayers", err)
	}
	if table.DealerSeat() != 0 {
		t.Fatal("dealer must not move when roles cannot be assigned")
	}
}

func TestCollectBlindsClampsShortStacks(t *testing.T) {
	t.Parallel()

	table := NewTable(Blinds{Small: 10, Big: 20})
	seatPlayers(t, table, map[int]int{1: 100, 2: 6, 3: 15})
	if err := table.AssignRolesForNewHand(); err != nil {
		t.Fatal(err)
	}

	sb, bb := table.CollectBlinds()
	if sb != 6 || bb != 15 {
		t.Fatalf("posted %d/%d, want 6/15", sb, bb)
	}
	for _, seat := range []int{2, 3} {
		p := table.Player(seat)
		if p.Chips != 0 || p.Status != StatusAllIn {
			t.Fatalf("seat %d: chips=%d status=%s, want all-in with 0", seat, p.Chips, p.Status)
		}
	}
	if p := table.Player(3); p.CurrentBet != 15 || p.TotalBet != 15 {
		t.Fatalf("big blind bets = %d/%d, want 15/15", p.CurrentBet, p.TotalBet)
	}
}

func TestLeaveFreesSeat(t *testing.T) {
	t.Parallel()

	table := NewTable(Blinds{Small: 1, Big: 2})
	seatPlayers(t, table, map[int]int{5: 100})

	p, err := table.Leave(5)
	if err != nil || p.ID != "p5" {
		t.Fatalf("leave = %v, %v", p, err)
	}
	if _, err := table.Leave(5); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("second leave = %v, want ErrPlayerNotFound", err)
	}
	if err := table.Seat(&Player{ID: "p5", Chips: 1}, 5); err != nil {
		t.Fatalf("reseat: %v", err)
	}
}

func TestCommitToZeroIsAllIn(t *testing.T) {
	t.Parallel()

	p := &Player{ID: "p1", Chips: 50}
	p.commit(50)
	if p.Status != StatusAllIn || !p.InHand() || p.CanAct() {
		t.Fatalf("status = %s, in hand %v, can act %v", p.Status, p.InHand(), p.CanAct())
	}
}

func TestEnumNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		got, want string
	}{
		{Active.String(), "active"},
		{StatusAllIn.String(), "allin"},
		{SittingOut.String(), "sitting_out"},
		{Status(-1).String(), "unknown"},
		{Status(99).String(), "unknown"},
		{AllIn.String(), "allin"},
		{PhaseFinished.String(), "finished"},
		{GamePhase(-1).String(), "unknown"},
		{GamePhase(99).String(), "unknown"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}
