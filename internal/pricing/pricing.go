// Package pricing computes order figures for folders and their additional
// orders from externally supplied rates.
package pricing

import (
	"github.com/book-expert/album-ingest-service/internal/album"
)

// Quote computes unit price, subtotal, tax, and total for the given page
// count and quantity. Unit price is the per-page rate times the page count,
// plus the print and cover rates. Missing (zero) rates simply contribute
// nothing; a quote is always producible. Pure function: identical inputs
// yield identical output.
func Quote(pageCount, quantity int, rates album.Rates) album.Price {
	if quantity < 1 {
		quantity = 1
	}

	unit := rates.PerPage*float64(pageCount) + rates.Print + rates.Cover
	subtotal := unit * float64(quantity)
	tax := subtotal * rates.Tax

	return album.Price{
		Unit:     unit,
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}

// PriceFolder fills in the folder's price and the price of every attached
// additional order. Additional orders may name a different standard size but
// share the folder's page count.
func PriceFolder(folder *album.UploadedFolder, rates album.Rates) {
	folder.Price = Quote(folder.PageCount, folder.Quantity, rates)

	for _, order := range folder.AdditionalOrders {
		order.Price = Quote(folder.PageCount, order.Quantity, rates)
	}
}
