package enumerate

// subLocalities is the curated per-department list used in exhaustive mode:
// the towns large enough to sustain their own repair shops. Departments
// without an entry fall back to their principal city.
var subLocalities = map[string][]string{
	"06": {"Nice", "Antibes", "Cannes", "Grasse", "Cagnes-sur-Mer", "Menton"},
	"13": {"Marseille", "Aix-en-Provence", "Arles", "Martigues", "Aubagne", "Salon-de-Provence", "Istres", "Vitrolles"},
	"21": {"Dijon", "Beaune", "Chenôve", "Talant", "Quetigny"},
	"25": {"Besançon", "Montbéliard", "Pontarlier", "Audincourt"},
	"31": {"Toulouse", "Colomiers", "Tournefeuille", "Blagnac", "Muret"},
	"33": {"Bordeaux", "Mérignac", "Pessac", "Talence", "Villenave-d'Ornon", "Saint-Médard-en-Jalles"},
	"34": {"Montpellier", "Béziers", "Sète", "Lunel", "Agde"},
	"35": {"Rennes", "Saint-Malo", "Fougères", "Vitré", "Bruz"},
	"38": {"Grenoble", "Saint-Martin-d'Hères", "Échirolles", "Vienne", "Voiron"},
	"42": {"Saint-Étienne", "Roanne", "Saint-Chamond", "Firminy"},
	"44": {"Nantes", "Saint-Nazaire", "Saint-Herblain", "Rezé", "Orvault"},
	"54": {"Nancy", "Vandœuvre-lès-Nancy", "Lunéville", "Toul"},
	"57": {"Metz", "Thionville", "Montigny-lès-Metz", "Sarreguemines", "Forbach"},
	"59": {"Lille", "Roubaix", "Tourcoing", "Dunkerque", "Villeneuve-d'Ascq", "Valenciennes", "Douai"},
	"67": {"Strasbourg", "Haguenau", "Schiltigheim", "Illkirch-Graffenstaden", "Sélestat"},
	"69": {"Lyon", "Villeurbanne", "Vénissieux", "Caluire-et-Cuire", "Saint-Priest", "Vaulx-en-Velin", "Bron"},
	"71": {"Mâcon", "Chalon-sur-Saône", "Le Creusot", "Autun", "Montceau-les-Mines"},
	"75": {"Paris"},
	"76": {"Rouen", "Le Havre", "Dieppe", "Sotteville-lès-Rouen"},
	"83": {"Toulon", "La Seyne-sur-Mer", "Hyères", "Fréjus", "Draguignan"},
	"89": {"Auxerre", "Sens", "Joigny", "Avallon"},
	"92": {"Nanterre", "Boulogne-Billancourt", "Courbevoie", "Colombes", "Asnières-sur-Seine", "Rueil-Malmaison"},
}
