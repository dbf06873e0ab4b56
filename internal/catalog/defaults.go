package catalog

var defaultStages = []Stage{
	{
		Index: 1,
		Name:  "Kraken",
		Names: map[string]string{"en": "Kraken", "ru": "Кракен"},
		Emoji: "👹",
		Image: "/media/monster1.jpeg",
		MaxHP: 100,
		Background: Background{
			ID:             "ocean_deep",
			Color:          "#001f3f",
			Gradient:       "linear-gradient(135deg, #001a33 0%, #003d5c 50%, #001f3f 100%)",
			LightIntensity: 0.2,
			WaterEffect:    true,
			ParticleColor:  "#00ccff",
		},
	},
	{
		Index: 2,
		Name:  "Dragon",
		Names: map[string]string{"en": "Dragon", "ru": "Дракон"},
		Emoji: "🐉",
		Image: "/media/monster2.jpeg",
		MaxHP: 150,
		Background: Background{
			ID:             "ocean_mid",
			Color:          "#004080",
			Gradient:       "linear-gradient(135deg, #0066cc 0%, #0099ff 50%, #004080 100%)",
			LightIntensity: 0.5,
			WaterEffect:    true,
			ParticleColor:  "#00ffff",
		},
	},
	{
		Index: 3,
		Name:  "Ghost",
		Names: map[string]string{"en": "Ghost", "ru": "Привидение"},
		Emoji: "👻",
		Image: "/media/monster3.jpeg",
		MaxHP: 80,
		Background: Background{
			ID:             "ocean_shallow",
			Color:          "#0099ff",
			Gradient:       "linear-gradient(135deg, #00ccff 0%, #66ffff 50%, #0099ff 100%)",
			LightIntensity: 0.8,
			WaterEffect:    true,
			ParticleColor:  "#ffffff",
		},
	},
	{
		Index: 4,
		Name:  "Lava Dragon",
		Names: map[string]string{"en": "Lava Dragon", "ru": "Лавовый дракон"},
		Emoji: "🐲",
		Image: "/media/monster4.jpeg",
		MaxHP: 200,
		Background: Background{
			ID:             "volcano",
			Color:          "#330000",
			Gradient:       "linear-gradient(135deg, #660000 0%, #ff3300 30%, #330000 100%)",
			LightIntensity: 0.6,
			WaterEffect:    false,
			ParticleColor:  "#ffaa00",
		},
	},
}

var defaultCatalog = MustNew(defaultStages)

// Default returns the built-in four-boss roster.
func Default() *Catalog {
	return defaultCatalog
}
