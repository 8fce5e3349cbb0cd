package catalog

import "github.com/G77-BOT/aura-flow/internal/domain"

var defaultProducts = []domain.Product{
	{
		ID: 1, Name: "Terracotta Sun Bikini", Category: "Bikinis", ImageRef: "bikini-1.png",
		UnitPriceMinorUnits: 5999,
		Description:         "A high-waisted, terracotta-colored bikini set, perfect for soaking up the sun.",
		MarketplaceURL:      "https://www.amazon.com/s?k=terracotta+bikini",
	},
	{
		ID: 2, Name: "Tropical Escape Bikini", Category: "Bikinis", ImageRef: "bikini-2.png",
		UnitPriceMinorUnits: 6499,
		Description:         "Vibrant, tropical print bikini that brings the spirit of the islands to you.",
		MarketplaceURL:      "https://www.amazon.com/s?k=tropical+print+bikini",
	},
	{
		ID: 3, Name: "Noir Lace Lingerie", Category: "Lingerie", ImageRef: "lingerie-1.png",
		UnitPriceMinorUnits: 7500,
		Description:         "An elegant and timeless black lace lingerie set for special moments.",
		MarketplaceURL:      "https://www.amazon.com/s?k=black+lace+lingerie+set",
	},
	{
		ID: 4, Name: "Dusty Rose Comfort Set", Category: "Lingerie", ImageRef: "lingerie-2.png",
		UnitPriceMinorUnits: 4999,
		Description:         "A comfortable and stylish cotton bralette and panty set in a dusty rose color.",
		MarketplaceURL:      "https://www.amazon.com/s?k=dusty+rose+lingerie+set",
	},
	{
		ID: 5, Name: "Celestial Moon Yoga Mat", Category: "Yoga Mats", ImageRef: "yoga-mat-1.png",
		UnitPriceMinorUnits: 8999, InStock: true,
		Description: "A beautiful, non-slip yoga mat with a celestial moon phase print to inspire your practice.",
	},
	{
		ID: 6, Name: "Eco-Friendly Cork Mat", Category: "Yoga Mats", ImageRef: "yoga-mat-2.png",
		UnitPriceMinorUnits: 9550, InStock: true,
		Description: "A textured, eco-friendly cork yoga mat that offers superior grip and sustainability.",
	},
	{
		ID: 7, Name: "Forest Green Leggings", Category: "Leggings", ImageRef: "leggings-1.png",
		UnitPriceMinorUnits: 7999,
		Description:         "High-waisted, seamless leggings in a forest green color, designed for ultimate comfort and flexibility.",
		MarketplaceURL:      "https://www.amazon.com/s?k=forest+green+leggings",
	},
	{
		ID: 8, Name: "Deep Blue Flow Leggings", Category: "Leggings", ImageRef: "leggings-2.png",
		UnitPriceMinorUnits: 8499,
		Description:         "Buttery-soft leggings in a deep blue color that move with you, from the studio to the street.",
		MarketplaceURL:      "https://www.amazon.com/s?k=deep+blue+leggings",
	},
}

// Default returns the compiled-in storefront catalog.
func Default() *Memory {
	m, err := NewMemory(defaultProducts)
	if err != nil {
		panic(err)
	}
	return m
}
