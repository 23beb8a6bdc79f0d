package notionsync

import (
	"time"

	"github.com/jomei/notionapi"

	"github.com/niyonkuru/momo-tracker/internal/infra/bigquery"
)

// maxRichTextLen caps rich text blocks below the Notion API limit.
const maxRichTextLen = 2000

// TransactionToNotionProperties converts a BigQuery TransactionRow to Notion
// properties. The Transaction ID title is the dedup key across syncs.
func TransactionToNotionProperties(tx *bigquery.TransactionRow) notionapi.Properties {
	props := notionapi.Properties{
		"Transaction ID": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.TransactionID,
					},
				},
			},
		},
		"Amount": notionapi.NumberProperty{
			Number: float64(tx.Amount),
		},
		"Fee": notionapi.NumberProperty{
			Number: float64(tx.Fee),
		},
	}

	if tx.Kind != "" {
		props["Kind"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: tx.Kind,
			},
		}
	}

	if tx.Counterparty != "" {
		props["Counterparty"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.Counterparty,
					},
				},
			},
		}
	}

	if !tx.OccurredTS.IsZero() {
		props["Date"] = notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: func() *notionapi.Date {
					d := notionapi.Date(tx.OccurredTS.In(time.UTC))
					return &d
				}(),
			},
		}
	}

	if tx.Balance.Valid {
		props["Balance"] = notionapi.NumberProperty{
			Number: float64(tx.Balance.Int64),
		}
	}

	if tx.RawMessage != "" {
		raw := tx.RawMessage
		if len(raw) > maxRichTextLen {
			raw = raw[:maxRichTextLen]
		}
		props["Source Message"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: raw,
					},
				},
			},
		}
	}

	return props
}
