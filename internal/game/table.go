package game

import (
	"fmt"
)

// MaxSeats is the number of seats at a table. Seats are numbered 1..MaxSeats
// and clockwise order is ascending seat number, wrapping after MaxSeats.
const MaxSeats = 9

// Blinds are the forced bets posted before the deal.
type Blinds struct {
	Small int `json:"small"`
	Big   int `json:"big"`
}

// Validate checks the blind structure is playable.
func (b Blinds) Validate() error {
	if b.Small <= 0 || b.Big <= 0 {
		return fmt.Errorf("blinds must be positive, got %d/%d", b.Small, b.Big)
	}
	if b.Small > b.Big {
		return fmt.Errorf("small blind %d exceeds big blind %d", b.Small, b.Big)
	}
	return nil
}

// Table tracks seat occupancy, the dealer button and blind roles.
type Table struct {
	seats  [MaxSeats + 1]*Player // index 0 unused
	blinds Blinds

	dealerSeat int // 0 until the first hand
	sbSeat     int
	bbSeat     int
	handsDealt int
}

// NewTable creates an empty table.
func NewTable(blinds Blinds) *Table {
	return &Table{blinds: blinds}
}

// Blinds returns the table's blind structure.
func (t *Table) Blinds() Blinds { return t.blinds }

// SetBlinds changes the blinds from the next hand.
func (t *Table) SetBlinds(b Blinds) { t.blinds = b }

// DealerSeat returns the button seat, or 0 before the first hand.
func (t *Table) DealerSeat() int { return t.dealerSeat }

// SmallBlindSeat returns the seat posting the small blind this hand.
func (t *Table) SmallBlindSeat() int { return t.sbSeat }

// BigBlindSeat returns the seat posting the big blind this hand.
func (t *Table) BigBlindSeat() int { return t.bbSeat }

// Seat puts p in the given seat.
func (t *Table) Seat(p *Player, seat int) error {
	if seat < 1 || seat > MaxSeats {
		return invalid("seat", seat, ErrInvalidSeat)
	}
	if t.seats[seat] != nil {
		return invalid("seat", seat, ErrSeatTaken)
	}
	for _, other := range t.seats {
		if other != nil && other.ID == p.ID {
			return invalid("seat", seat, fmt.Errorf("%w: %s in seat %d", ErrDuplicatePlayer, p.ID, other.Seat))
		}
	}
	p.Seat = seat
	t.seats[seat] = p
	return nil
}

// Leave empties a seat and returns the player who sat there.
func (t *Table) Leave(seat int) (*Player, error) {
	p, err := t.lookup("leave", seat)
	if err != nil {
		return nil, err
	}
	t.seats[seat] = nil
	return p, nil
}

// SitOut excludes the seat from future hands until SitIn.
func (t *Table) SitOut(seat int) error {
	p, err := t.lookup("sit out", seat)
	if err != nil {
		return err
	}
	p.sitOut = true
	return nil
}

// SitIn makes a sitting out player eligible for the next hand.
func (t *Table) SitIn(seat int) error {
	p, err := t.lookup("sit in", seat)
	if err != nil {
		return err
	}
	p.sitOut = false
	return nil
}

// Player returns the player in seat, or nil.
func (t *Table) Player(seat int) *Player {
	if seat < 1 || seat > MaxSeats {
		return nil
	}
	return t.seats[seat]
}

// Players returns the seated players in seat order.
func (t *Table) Players() []*Player {
	out := make([]*Player, 0, MaxSeats)
	for _, p := range t.seats[1:] {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Occupied returns the number of seated players.
func (t *Table) Occupied() int {
	n := 0
	for _, p := range t.seats[1:] {
		if p != nil {
			n++
		}
	}
	return n
}

// Count returns how many seated players satisfy pred.
func (t *Table) Count(pred func(*Player) bool) int {
	n := 0
	for _, p := range t.seats[1:] {
		if p != nil && pred(p) {
			n++
		}
	}
	return n
}

func (t *Table) lookup(op string, seat int) (*Player, error) {
	if seat < 1 || seat > MaxSeats {
		return nil, invalid(op, seat, ErrInvalidSeat)
	}
	p := t.seats[seat]
	if p == nil {
		return nil, invalid(op, seat, ErrPlayerNotFound)
	}
	return p, nil
}

// nextSeat returns the first seat clockwise after from whose player matches
// pred. The search wraps and ends on from itself. It returns 0 if no seat
// matches. from need not be occupied.
func (t *Table) nextSeat(from int, pred func(*Player) bool) int {
	for i := 1; i <= MaxSeats; i++ {
		seat := (from-1+i)%MaxSeats + 1
		if p := t.seats[seat]; p != nil && pred(p) {
			return seat
		}
	}
	return 0
}

func eligibleForHand(p *Player) bool {
	return !p.sitOut && p.Chips > 0
}

func isActive(p *Player) bool { return p.Status == Active }

// AssignRolesForNewHand resets every seated player for a new hand, moves the
// button and derives the blind seats.
//
// The first hand puts the button on the lowest eligible seat; later hands
// move it to the next eligible seat clockwise. With exactly two players the
// dealer posts the small blind.
func (t *Table) AssignRolesForNewHand() error {
	eligible := t.Count(eligibleForHand)
	if eligible < 2 {
		return invalid("assign roles", 0, ErrNotEnoughPlayers)
	}

	for _, p := range t.Players() {
		p.resetForHand()
	}

	var dealer int
	if t.handsDealt == 0 || t.dealerSeat == 0 {
		dealer = t.nextSeat(MaxSeats, isActive)
	} else {
		dealer = t.nextSeat(t.dealerSeat, isActive)
	}
	if dealer == 0 {
		return ErrDealerNotFound
	}

	sb := t.nextSeat(dealer, isActive)
	if eligible == 2 {
		sb = dealer
	}
	bb := t.nextSeat(sb, isActive)
	if sb == 0 || bb == 0 || bb == sb {
		return ErrDealerNotFound
	}

	t.dealerSeat, t.sbSeat, t.bbSeat = dealer, sb, bb
	t.seats[dealer].IsDealer = true
	t.seats[sb].IsSmallBlind = true
	t.seats[bb].IsBigBlind = true
	t.handsDealt++
	return nil
}

// CollectBlinds posts the blinds for the current roles. A blind larger than
// the stack puts the player all-in for what they have. It returns the amounts
// actually posted.
func (t *Table) CollectBlinds() (small, big int) {
	post := func(seat, amount int) int {
		p := t.seats[seat]
		if p == nil {
			return 0
		}
		amount = min(amount, p.Chips)
		p.commit(amount)
		return amount
	}
	small = post(t.sbSeat, t.blinds.Small)
	big = post(t.bbSeat, t.blinds.Big)
	return small, big
}

// clockwiseFrom orders seats by their distance clockwise after from.
func clockwiseFrom(from, seat int) int {
	return (seat - from - 1 + MaxSeats) % MaxSeats
}
