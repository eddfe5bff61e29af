package reconcile

import (
	"github.com/agentstation/catalogbridge/internal/target"
)

// ReconcileVisibility returns the single visibility record to send for
// channelID. An existing record for the channel keeps its id and only gets
// the new level; otherwise the record carries no id and the server assigns one.
func ReconcileVisibility(existing []target.ProductVisibility, channelID string, level int) target.ProductVisibility {
	for _, v := range existing {
		if v.SalesChannelID == channelID {
			return target.ProductVisibility{
				ID:             v.ID,
				SalesChannelID: channelID,
				Visibility:     level,
			}
		}
	}
	return target.ProductVisibility{
		SalesChannelID: channelID,
		Visibility:     level,
	}
}
