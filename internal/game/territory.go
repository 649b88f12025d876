package game

// TerritoryDisplay is presentation data carried through to clients.
// The server never branches on any of these fields.
type TerritoryDisplay struct {
	Name   string
	Phrase string
	X      int
	Y      int
}

// Territory is one claimable unit. OwnerID is empty until claimed and
// only returns to empty on a session reset.
type Territory struct {
	ID      string
	Display TerritoryDisplay
	OwnerID string
}

// NewCatalog returns a fresh, unclaimed copy of the territory catalog.
// Each session owns its copy exclusively; the catalog is never aliased
// across sessions.
func NewCatalog() []*Territory {
	out := make([]*Territory, len(catalog))
	for i, t := range catalog {
		c := t
		out[i] = &c
	}
	return out
}

var catalog = []Territory{
	{
		ID: "north-america",
		Display: TerritoryDisplay{
			Name:   "North America",
			Phrase: "North America is a diverse continent with vast landscapes, from the Arctic tundra of Canada to the tropical beaches of the Caribbean. It is home to the United States, Canada, and Mexico, along with several smaller nations. The continent is known for its economic power, cultural influence, and natural wonders like the Grand Canyon.",
			X:      180,
			Y:      150,
		},
	},
	{
		ID: "south-america",
		Display: TerritoryDisplay{
			Name:   "South America",
			Phrase: "South America is rich in biodiversity, featuring the Amazon Rainforest, the Andes Mountains, and unique wildlife. It consists of countries like Brazil, Argentina, and Colombia, each with distinct cultures and traditions. Known for football passion, vibrant festivals, and ancient civilizations like the Inca, it has a deep historical heritage.",
			X:      220,
			Y:      290,
		},
	},
	{
		ID: "europe",
		Display: TerritoryDisplay{
			Name:   "Europe",
			Phrase: "Europe blends history and modernity, featuring iconic landmarks such as the Eiffel Tower, Colosseum, and Buckingham Palace. Comprising nations like France, Germany, and Spain, it has a rich cultural heritage, diverse languages, and economic strength. The continent has influenced global politics, art, and science for centuries.",
			X:      450,
			Y:      130,
		},
	},
	{
		ID: "africa",
		Display: TerritoryDisplay{
			Name:   "Africa",
			Phrase: "Africa is the second-largest continent, known for its diverse cultures, wildlife, and landscapes. From the Sahara Desert to the Serengeti, it holds vast natural beauty. It is home to over 50 nations, including Nigeria, Egypt, and South Africa. Rich in history, Africa has ancient civilizations like Egypt and a strong cultural heritage.",
			X:      450,
			Y:      250,
		},
	},
	{
		ID: "asia",
		Display: TerritoryDisplay{
			Name:   "Asia",
			Phrase: "Asia, the largest continent, is home to over four billion people and some of the world's oldest civilizations, including China and India. It has diverse landscapes, from the Himalayas to tropical islands. Economically powerful, it leads in technology and manufacturing. Asia's cultural influence is vast, with traditions spanning thousands of years.",
			X:      600,
			Y:      180,
		},
	},
	{
		ID: "oceania",
		Display: TerritoryDisplay{
			Name:   "Oceania",
			Phrase: "Oceania consists of Australia, New Zealand, and Pacific island nations such as Fiji and Papua New Guinea. It is famous for the Great Barrier Reef, indigenous cultures, and unique wildlife. The region has stunning beaches, diverse ecosystems, and a strong connection to nature. Oceania's cultural identity is shaped by its island heritage.",
			X:      720,
			Y:      310,
		},
	},
	{
		ID: "antarctica",
		Display: TerritoryDisplay{
			Name:   "Antarctica",
			Phrase: "Antarctica is Earth's coldest and most remote continent, covered in ice year-round. It has no permanent population, only scientists conducting research. Home to penguins, seals, and whales, it plays a crucial role in climate studies. Antarctica's extreme conditions make it one of the least explored and most fascinating places on the planet.",
			X:      450,
			Y:      420,
		},
	},
}
