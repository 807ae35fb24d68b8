package enumerate

// Static geography tables. Each department maps to its principal city and
// that city's postal code; regions map to their department codes in
// official order.

type department struct {
	PrincipalCity string
	PostalCode    string
}

var departments = map[string]department{
	"01": {"Bourg-en-Bresse", "01000"},
	"02": {"Laon", "02000"},
	"03": {"Moulins", "03000"},
	"04": {"Digne-les-Bains", "04000"},
	"05": {"Gap", "05000"},
	"06": {"Nice", "06000"},
	"07": {"Privas", "07000"},
	"08": {"Charleville-Mézières", "08000"},
	"09": {"Foix", "09000"},
	"10": {"Troyes", "10000"},
	"11": {"Carcassonne", "11000"},
	"12": {"Rodez", "12000"},
	"13": {"Marseille", "13001"},
	"14": {"Caen", "14000"},
	"15": {"Aurillac", "15000"},
	"16": {"Angoulême", "16000"},
	"17": {"La Rochelle", "17000"},
	"18": {"Bourges", "18000"},
	"19": {"Tulle", "19000"},
	"2A": {"Ajaccio", "20000"},
	"2B": {"Bastia", "20200"},
	"21": {"Dijon", "21000"},
	"22": {"Saint-Brieuc", "22000"},
	"23": {"Guéret", "23000"},
	"24": {"Périgueux", "24000"},
	"25": {"Besançon", "25000"},
	"26": {"Valence", "26000"},
	"27": {"Évreux", "27000"},
	"28": {"Chartres", "28000"},
	"29": {"Quimper", "29000"},
	"30": {"Nîmes", "30000"},
	"31": {"Toulouse", "31000"},
	"32": {"Auch", "32000"},
	"33": {"Bordeaux", "33000"},
	"34": {"Montpellier", "34000"},
	"35": {"Rennes", "35000"},
	"36": {"Châteauroux", "36000"},
	"37": {"Tours", "37000"},
	"38": {"Grenoble", "38000"},
	"39": {"Lons-le-Saunier", "39000"},
	"40": {"Mont-de-Marsan", "40000"},
	"41": {"Blois", "41000"},
	"42": {"Saint-Étienne", "42000"},
	"43": {"Le Puy-en-Velay", "43000"},
	"44": {"Nantes", "44000"},
	"45": {"Orléans", "45000"},
	"46": {"Cahors", "46000"},
	"47": {"Agen", "47000"},
	"48": {"Mende", "48000"},
	"49": {"Angers", "49000"},
	"50": {"Saint-Lô", "50000"},
	"51": {"Châlons-en-Champagne", "51000"},
	"52": {"Chaumont", "52000"},
	"53": {"Laval", "53000"},
	"54": {"Nancy", "54000"},
	"55": {"Bar-le-Duc", "55000"},
	"56": {"Vannes", "56000"},
	"57": {"Metz", "57000"},
	"58": {"Nevers", "58000"},
	"59": {"Lille", "59000"},
	"60": {"Beauvais", "60000"},
	"61": {"Alençon", "61000"},
	"62": {"Arras", "62000"},
	"63": {"Clermont-Ferrand", "63000"},
	"64": {"Pau", "64000"},
	"65": {"Tarbes", "65000"},
	"66": {"Perpignan", "66000"},
	"67": {"Strasbourg", "67000"},
	"68": {"Colmar", "68000"},
	"69": {"Lyon", "69001"},
	"70": {"Vesoul", "70000"},
	"71": {"Mâcon", "71000"},
	"72": {"Le Mans", "72000"},
	"73": {"Chambéry", "73000"},
	"74": {"Annecy", "74000"},
	"75": {"Paris", "75001"},
	"76": {"Rouen", "76000"},
	"77": {"Melun", "77000"},
	"78": {"Versailles", "78000"},
	"79": {"Niort", "79000"},
	"80": {"Amiens", "80000"},
	"81": {"Albi", "81000"},
	"82": {"Montauban", "82000"},
	"83": {"Toulon", "83000"},
	"84": {"Avignon", "84000"},
	"85": {"La Roche-sur-Yon", "85000"},
	"86": {"Poitiers", "86000"},
	"87": {"Limoges", "87000"},
	"88": {"Épinal", "88000"},
	"89": {"Auxerre", "89000"},
	"90": {"Belfort", "90000"},
	"91": {"Évry-Courcouronnes", "91000"},
	"92": {"Nanterre", "92000"},
	"93": {"Bobigny", "93000"},
	"94": {"Créteil", "94000"},
	"95": {"Cergy", "95000"},
}

var regions = map[string][]string{
	"auvergne-rhone-alpes":       {"01", "03", "07", "15", "26", "38", "42", "43", "63", "69", "73", "74"},
	"bourgogne-franche-comte":    {"21", "25", "39", "58", "70", "71", "89", "90"},
	"bretagne":                   {"22", "29", "35", "56"},
	"centre-val-de-loire":        {"18", "28", "36", "37", "41", "45"},
	"corse":                      {"2A", "2B"},
	"grand-est":                  {"08", "10", "51", "52", "54", "55", "57", "67", "68", "88"},
	"hauts-de-france":            {"02", "59", "60", "62", "80"},
	"ile-de-france":              {"75", "77", "78", "91", "92", "93", "94", "95"},
	"normandie":                  {"14", "27", "50", "61", "76"},
	"nouvelle-aquitaine":         {"16", "17", "19", "23", "24", "33", "40", "47", "64", "79", "86", "87"},
	"occitanie":                  {"09", "11", "12", "30", "31", "32", "34", "46", "48", "65", "66", "81", "82"},
	"pays-de-la-loire":           {"44", "49", "53", "72", "85"},
	"provence-alpes-cote-d-azur": {"04", "05", "06", "13", "83", "84"},
}
