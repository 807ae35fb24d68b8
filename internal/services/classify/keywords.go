package classify

// Keyword sets are matched against folded text (lower-case, accents
// stripped), so entries here are written folded.

// repairKeywords mark a listing as a likely device-repair business.
var repairKeywords = []string{
	"reparation",
	"reparateur",
	"repare",
	"repair",
	"smartphone",
	"telephone",
	"iphone",
	"gsm",
	"mobile",
	"tablette",
	"ecran casse",
	"deblocage",
	"desimlockage",
}

// exclusionKeywords veto the keyword stage: businesses that match "repair"
// but fix the wrong things.
var exclusionKeywords = []string{
	"ordinateur",
	"informatique",
	"pc portable",
	"imprimante",
	"automobile",
	"auto ecole",
	"voiture",
	"carrosserie",
	"moto",
	"velo",
	"electromenager",
	"machine a coudre",
	"montre",
	"bijouterie",
	"coque", // accessory shops, not workshops
	"accessoires uniquement",
}

// serviceKeywords map matched terms to the canonical service labels carried
// on the verdict.
var serviceKeywords = map[string]string{
	"ecran":        "écran",
	"vitre":        "écran",
	"batterie":     "batterie",
	"connecteur":   "connecteur de charge",
	"desoxydation": "désoxydation",
	"deblocage":    "déblocage",
	"desimlockage": "déblocage",
	"recuperation": "récupération de données",
	"tablette":     "tablette",
	"console":      "console",
}
