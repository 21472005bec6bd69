package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	ticketPrefix       = "TKT"
	ticketSuffixLength = 4
)

var ticketAlphabet = []rune("0123456789abcdefghijklmnopqrstuvwxyz")

// TicketIssuer generates human-readable ticket numbers of the form
// TKT-<base36 millisecond timestamp>-<4 random base36 chars>.
//
// The timestamp component is kept strictly increasing per process so two
// tickets issued in the same millisecond cannot collide locally. Across
// processes uniqueness is probabilistic; the unique index on ticket_number is
// the correctness backstop and a collision surfaces as a retryable create
// failure.
type TicketIssuer struct {
	mu        sync.Mutex
	lastStamp int64
}

// NewTicketIssuer returns a TicketIssuer.
func NewTicketIssuer() *TicketIssuer {
	return &TicketIssuer{}
}

// Next returns a new ticket number.
func (g *TicketIssuer) Next() (string, error) {
	g.mu.Lock()
	stamp := time.Now().UnixMilli()
	if stamp <= g.lastStamp {
		stamp = g.lastStamp + 1
	}
	g.lastStamp = stamp
	g.mu.Unlock()

	b := make([]rune, ticketSuffixLength)
	max := big.NewInt(int64(len(ticketAlphabet)))
	for i := 0; i < ticketSuffixLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = ticketAlphabet[n.Int64()]
	}
	return fmt.Sprintf("%s-%s-%s", ticketPrefix,
		strings.ToUpper(strconv.FormatInt(stamp, 36)),
		strings.ToUpper(string(b))), nil
}
