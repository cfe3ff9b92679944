package payouts

import (
	"sort"
	"strconv"

	"github.com/aldomartell/tipply-backend/pkg/db/models"
	"github.com/aldomartell/tipply-backend/pkg/enums"
	"github.com/google/uuid"
)

var exportHeader = []string{"earner_id", "item_type", "amount_cents", "fee_cents", "net_cents", "status"}

// BuildExportRows renders batch items as deterministic tabular rows: a header,
// then per earner (ascending id) the EARNER row followed by that earner's
// claimed FEE_DEDUCTION rows. Rendering to CSV or a spreadsheet is the
// consumer's problem.
func BuildExportRows(items []models.PayoutBatchItem) [][]string {
	byEarner := make(map[uuid.UUID][]models.PayoutBatchItem)
	order := make([]uuid.UUID, 0)
	for _, item := range items {
		if _, seen := byEarner[item.EarnerID]; !seen {
			order = append(order, item.EarnerID)
		}
		byEarner[item.EarnerID] = append(byEarner[item.EarnerID], item)
	}
	sort.Slice(order, func(i, j int) bool {
		return order[i].String() < order[j].String()
	})

	rows := [][]string{exportHeader}
	for _, earnerID := range order {
		group := byEarner[earnerID]
		sort.Slice(group, func(i, j int) bool {
			a, b := group[i], group[j]
			if a.ItemType != b.ItemType {
				return a.ItemType == enums.PayoutItemTypeEarner
			}
			return a.ID.String() < b.ID.String()
		})
		for _, item := range group {
			rows = append(rows, exportRow(item))
		}
	}
	return rows
}

func exportRow(item models.PayoutBatchItem) []string {
	return []string{
		item.EarnerID.String(),
		string(item.ItemType),
		strconv.FormatInt(item.AmountCents, 10),
		strconv.FormatInt(item.FeeCents, 10),
		strconv.FormatInt(item.NetCents, 10),
		string(item.Status),
	}
}
