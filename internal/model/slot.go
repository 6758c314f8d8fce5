package model

import (
	"sort"
	"strconv"
	"time"
)

// SlotStatus is the state of a number in the challenge.
type SlotStatus string

const (
	// StatusAvailable is never stored; it is the absence of a slot row.
	StatusAvailable SlotStatus = "available"
	StatusPending   SlotStatus = "pending"
	StatusConfirmed SlotStatus = "confirmed"
)

// Slot represents the reservation record for a single number.
type Slot struct {
	ID              string     `json:"id"`
	Number          int        `json:"number"`
	ClaimantName    string     `json:"claimant_name"`
	ClaimantContact string     `json:"claimant_contact"`
	Status          SlotStatus `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
}

// SlotID returns the key of the slot holding number.
func SlotID(number int) string {
	return strconv.Itoa(number)
}

// ParseSlotID converts a slot key back into its number.
func ParseSlotID(id string) (int, bool) {
	n, err := strconv.Atoi(id)
	if err != nil || SlotID(n) != id {
		return 0, false
	}
	return n, true
}

// DeriveStatus computes the status of number from a snapshot.
// A number with no slot is available.
func DeriveStatus(slots []Slot, number int) SlotStatus {
	for i := range slots {
		if slots[i].Number == number {
			return slots[i].Status
		}
	}
	return StatusAvailable
}

// AdminQueue orders a snapshot for review: pending slots first, then by number.
// The input slice is not modified.
func AdminQueue(slots []Slot) []Slot {
	out := make([]Slot, len(slots))
	copy(out, slots)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Status == StatusPending, out[j].Status == StatusPending
		if pi != pj {
			return pi
		}
		return out[i].Number < out[j].Number
	})
	return out
}

// BoardCell is one number of the challenge grid.
type BoardCell struct {
	Number int        `json:"number"`
	Status SlotStatus `json:"status"`
}

// Board is the full challenge grid derived from a snapshot.
type Board struct {
	ChallengeSize  int         `json:"challenge_size"`
	ConfirmedCount int         `json:"confirmed_count"`
	PendingCount   int         `json:"pending_count"`
	AvailableCount int         `json:"available_count"`
	Progress       float64     `json:"progress"`
	Cells          []BoardCell `json:"cells"`
}

// BuildBoard derives the grid over [1, size] from a snapshot.
// Slots numbered outside the range (left over after the challenge shrank)
// are not counted.
func BuildBoard(slots []Slot, size int) Board {
	byNumber := make(map[int]SlotStatus, len(slots))
	for _, s := range slots {
		byNumber[s.Number] = s.Status
	}

	board := Board{ChallengeSize: size, Cells: make([]BoardCell, 0, size)}
	for n := 1; n <= size; n++ {
		status, ok := byNumber[n]
		if !ok {
			status = StatusAvailable
		}
		switch status {
		case StatusConfirmed:
			board.ConfirmedCount++
		case StatusPending:
			board.PendingCount++
		default:
			board.AvailableCount++
		}
		board.Cells = append(board.Cells, BoardCell{Number: n, Status: status})
	}
	if size > 0 {
		board.Progress = float64(board.ConfirmedCount) / float64(size)
	}
	return board
}

// ReserveSlotRequest is the DTO for reserving a number.
type ReserveSlotRequest struct {
	Number          int    `json:"number" validate:"required,gte=1"`
	ClaimantName    string `json:"claimant_name" validate:"required,notblank,max=255"`
	ClaimantContact string `json:"claimant_contact" validate:"required,notblank,max=64"`
}

// ResetSlotsRequest must carry an explicit confirmation.
type ResetSlotsRequest struct {
	Confirm bool `json:"confirm"`
}

// ResetSlotsResponse reports how many slots were removed.
type ResetSlotsResponse struct {
	Deleted int64 `json:"deleted"`
}

// SlotStatusResponse is the API response for GET /api/slots/:number/status
type SlotStatusResponse struct {
	Number int        `json:"number"`
	Status SlotStatus `json:"status"`
}
