package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAuctionNotFound   = errors.New("auction not found")
	ErrAuctionEnded      = errors.New("this auction has ended")
	ErrSelfBid           = errors.New("you cannot bid on your own auction")
	ErrInvalidAmount     = errors.New("bid amount must be greater than zero")
	ErrNotDesigner       = errors.New("only the designer may modify this auction")
	ErrNotDeletable      = errors.New("auction can only be removed while locked and bidder-free")
	ErrNotReactivatable  = errors.New("can only reactivate sold items")
	ErrEndTimeInPast     = errors.New("end time must be in the future")
	ErrEndTimeTooFar     = errors.New("auction duration cannot exceed 3 days")
	ErrTitleRequired     = errors.New("title is required")
	ErrInvalidStartPrice = errors.New("start price must be greater than zero")
)

// BidTooLowError carries the current price so the UI can render the
// rejection verbatim. The message is part of the contract, not a debug aid.
type BidTooLowError struct {
	CurrentPrice int64
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("Bid must be higher than current price of €%d", e.CurrentPrice)
}
