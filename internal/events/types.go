// internal/events/types.go
package events

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// EventType represents the type of event.
type EventType string

const (
	TokenLaunched    EventType = "token.launched"
	TokensPurchased  EventType = "tokens.purchased"
	TokensSold       EventType = "tokens.sold"
	LiquiditySwapped EventType = "liquidity.swapped"
	FeeClaimed       EventType = "fee.claimed"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
	// Sequence is the position of the event in the launchpad's notification log.
	Sequence() uint64
	// Attributes flattens the payload for storage.
	Attributes() map[string]string
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
	Seq       uint64
}

// Type returns the event type.
func (e *BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e *BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// Sequence returns the log position assigned at commit.
func (e *BaseEvent) Sequence() uint64 {
	return e.Seq
}

// Stamp assigns the log position and commit time.
func (e *BaseEvent) Stamp(seq uint64, at time.Time) {
	e.Seq = seq
	e.EventTime = at
}

// Reserves is the curve snapshot carried by launch and trade events.
type Reserves struct {
	VirtualEth   *uint256.Int
	VirtualToken *uint256.Int
	RealEth      *uint256.Int
	RealToken    *uint256.Int
}

func (r Reserves) put(attrs map[string]string) {
	attrs["virtual_eth"] = dec(r.VirtualEth)
	attrs["virtual_token"] = dec(r.VirtualToken)
	attrs["real_eth"] = dec(r.RealEth)
	attrs["real_token"] = dec(r.RealToken)
}

// TokenLaunchedEvent is emitted when a token is created on the curve.
type TokenLaunchedEvent struct {
	BaseEvent
	Token   common.Address
	Creator common.Address
	Name    string
	Symbol  string
	URI     string
	Reserves
}

func NewTokenLaunched(tok, creator common.Address, name, symbol, uri string, r Reserves) *TokenLaunchedEvent {
	return &TokenLaunchedEvent{
		BaseEvent: BaseEvent{EventType: TokenLaunched},
		Token:     tok,
		Creator:   creator,
		Name:      name,
		Symbol:    symbol,
		URI:       uri,
		Reserves:  r,
	}
}

func (e *TokenLaunchedEvent) Attributes() map[string]string {
	attrs := map[string]string{
		"token":   e.Token.Hex(),
		"creator": e.Creator.Hex(),
		"name":    e.Name,
		"symbol":  e.Symbol,
		"uri":     e.URI,
	}
	e.Reserves.put(attrs)
	return attrs
}

// TokensPurchasedEvent is emitted for every buy, carrying the gross paid.
type TokensPurchasedEvent struct {
	BaseEvent
	Token     common.Address
	Buyer     common.Address
	TokensOut *uint256.Int
	GrossPaid *uint256.Int
	Reserves
}

func NewTokensPurchased(tok, buyer common.Address, tokensOut, grossPaid *uint256.Int, r Reserves) *TokensPurchasedEvent {
	return &TokensPurchasedEvent{
		BaseEvent: BaseEvent{EventType: TokensPurchased},
		Token:     tok,
		Buyer:     buyer,
		TokensOut: tokensOut,
		GrossPaid: grossPaid,
		Reserves:  r,
	}
}

func (e *TokensPurchasedEvent) Attributes() map[string]string {
	attrs := map[string]string{
		"token":      e.Token.Hex(),
		"buyer":      e.Buyer.Hex(),
		"tokens_out": dec(e.TokensOut),
		"gross_paid": dec(e.GrossPaid),
	}
	e.Reserves.put(attrs)
	return attrs
}

// TokensSoldEvent is emitted for every sell, carrying the net paid out.
type TokensSoldEvent struct {
	BaseEvent
	Token     common.Address
	Seller    common.Address
	TokensIn  *uint256.Int
	NetEthOut *uint256.Int
	Reserves
}

func NewTokensSold(tok, seller common.Address, tokensIn, netEthOut *uint256.Int, r Reserves) *TokensSoldEvent {
	return &TokensSoldEvent{
		BaseEvent: BaseEvent{EventType: TokensSold},
		Token:     tok,
		Seller:    seller,
		TokensIn:  tokensIn,
		NetEthOut: netEthOut,
		Reserves:  r,
	}
}

func (e *TokensSoldEvent) Attributes() map[string]string {
	attrs := map[string]string{
		"token":       e.Token.Hex(),
		"seller":      e.Seller.Hex(),
		"tokens_in":   dec(e.TokensIn),
		"net_eth_out": dec(e.NetEthOut),
	}
	e.Reserves.put(attrs)
	return attrs
}

// LiquiditySwappedEvent is emitted when a migration deposits into the AMM.
type LiquiditySwappedEvent struct {
	BaseEvent
	Token       common.Address
	TokenAmount *uint256.Int
	EthAmount   *uint256.Int
}

func NewLiquiditySwapped(tok common.Address, tokenAmount, ethAmount *uint256.Int) *LiquiditySwappedEvent {
	return &LiquiditySwappedEvent{
		BaseEvent:   BaseEvent{EventType: LiquiditySwapped},
		Token:       tok,
		TokenAmount: tokenAmount,
		EthAmount:   ethAmount,
	}
}

func (e *LiquiditySwappedEvent) Attributes() map[string]string {
	return map[string]string{
		"token":        e.Token.Hex(),
		"token_amount": dec(e.TokenAmount),
		"eth_amount":   dec(e.EthAmount),
	}
}

// FeeClaimedEvent is emitted when the accrued protocol fee is paid out.
type FeeClaimedEvent struct {
	BaseEvent
	Destination common.Address
	Amount      *uint256.Int
}

func NewFeeClaimed(destination common.Address, amount *uint256.Int) *FeeClaimedEvent {
	return &FeeClaimedEvent{
		BaseEvent:   BaseEvent{EventType: FeeClaimed},
		Destination: destination,
		Amount:      amount,
	}
}

func (e *FeeClaimedEvent) Attributes() map[string]string {
	return map[string]string{
		"destination": e.Destination.Hex(),
		"amount":      dec(e.Amount),
	}
}

// TokenOf returns the token an event refers to, if any.
func TokenOf(e Event) (common.Address, bool) {
	switch ev := e.(type) {
	case *TokenLaunchedEvent:
		return ev.Token, true
	case *TokensPurchasedEvent:
		return ev.Token, true
	case *TokensSoldEvent:
		return ev.Token, true
	case *LiquiditySwappedEvent:
		return ev.Token, true
	}
	return common.Address{}, false
}

func dec(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}
