package gtfsdb

import (
	"fmt"
	"strconv"
	"strings"

	"lintang/transitx/pkg/datastructure"
)

// GTFS transfers.txt transfer_type
// https://gtfs.org/schedule/reference/#transferstxt
const (
	TransferRecommended     = 0
	TransferTimed           = 1
	TransferMinTime         = 2
	TransferNotPossible     = 3
	TransferInSeat          = 4
	TransferInSeatForbidden = 5
)

// MapTransferType returns the rule for a transfers.txt row without its From/To points.
// minTransferTime < 0 means the column was empty.
func MapTransferType(transferType int, minTransferTime int) datastructure.ConstrainedTransfer {
	c := datastructure.ConstrainedTransfer{Priority: datastructure.Allowed, MinTransferTime: -1}
	switch transferType {
	case TransferRecommended:
		c.Priority = datastructure.Recommended
	case TransferTimed:
		c.Guaranteed = true
	case TransferMinTime:
		c.MinTransferTime = max(minTransferTime, 0)
	case TransferNotPossible, TransferInSeatForbidden:
		c.Priority = datastructure.NotAllowed
	case TransferInSeat:
		c.StaySeated = true
	}
	return c
}

// ParseGTFSTime parses H:MM:SS into seconds since service day start. Hours may be >= 24.
func ParseGTFSTime(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid gtfs time %q", s)
	}
	var hms [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid gtfs time %q", s)
		}
		hms[i] = v
	}
	if hms[1] > 59 || hms[2] > 59 {
		return 0, fmt.Errorf("invalid gtfs time %q", s)
	}
	return hms[0]*3600 + hms[1]*60 + hms[2], nil
}
