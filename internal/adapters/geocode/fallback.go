package geocode

import (
	"math/rand"
	"regexp"

	"reperio/internal/domain"
)

// jitterRange spreads fallback points so several unresolvable listings in
// one department do not stack on the exact centroid.
const jitterRange = 0.005

// nationalCentroid is the metropolitan France fallback of last resort.
var nationalCentroid = [2]float64{46.603354, 1.888334}

// postalPattern matches a French postal code in free-form address text.
var postalPattern = regexp.MustCompile(`\b\d{5}\b`)

// Fallback returns the department centroid for the listing's department,
// jittered independently on both axes and tagged as a fallback. The code
// comes from the locality when it carries one; city-scope localities carry
// only a name, so the postal code is extracted from the address before
// degrading to the national centroid.
func Fallback(address string, loc domain.Locality) domain.GeocodeResult {
	code := loc.DepartmentCode
	if code == "" && len(loc.PostalCode) >= 2 {
		code = loc.PostalCode[:2]
	}
	if code == "" {
		if pc := postalPattern.FindString(address); pc != "" {
			code = pc[:2]
		}
	}
	base, ok := departmentCentroids[code]
	if !ok {
		base = nationalCentroid
	}
	return domain.GeocodeResult{
		Lat:      base[0] + jitter(),
		Lng:      base[1] + jitter(),
		Accuracy: domain.AccuracyApproximate,
		Fallback: true,
	}
}

func jitter() float64 {
	return (rand.Float64()*2 - 1) * jitterRange
}

// departmentCentroids maps metropolitan department codes to approximate
// geographic centers.
var departmentCentroids = map[string][2]float64{
	"01": {46.0667, 5.3333},  // Ain
	"02": {49.5667, 3.5667},  // Aisne
	"03": {46.3667, 3.1833},  // Allier
	"04": {44.1000, 6.2333},  // Alpes-de-Haute-Provence
	"05": {44.6667, 6.2667},  // Hautes-Alpes
	"06": {43.9333, 7.1167},  // Alpes-Maritimes
	"07": {44.7333, 4.4333},  // Ardèche
	"08": {49.6167, 4.6333},  // Ardennes
	"09": {42.9167, 1.5000},  // Ariège
	"10": {48.3000, 4.1667},  // Aube
	"11": {43.1000, 2.4167},  // Aude
	"12": {44.2833, 2.6833},  // Aveyron
	"13": {43.5432, 5.0863},  // Bouches-du-Rhône
	"14": {49.0903, -0.3633}, // Calvados
	"15": {45.0500, 2.6667},  // Cantal
	"16": {45.7167, 0.2000},  // Charente
	"17": {45.7833, -0.6667}, // Charente-Maritime
	"18": {47.0667, 2.4333},  // Cher
	"19": {45.3500, 1.8667},  // Corrèze
	"2A": {41.8667, 8.9833},  // Corse-du-Sud
	"2B": {42.3833, 9.2167},  // Haute-Corse
	"21": {47.4167, 4.8333},  // Côte-d'Or
	"22": {48.4333, -2.8667}, // Côtes-d'Armor
	"23": {46.0833, 2.0167},  // Creuse
	"24": {45.1000, 0.7500},  // Dordogne
	"25": {47.1667, 6.3667},  // Doubs
	"26": {44.6833, 5.1667},  // Drôme
	"27": {49.1167, 0.9333},  // Eure
	"28": {48.3833, 1.3667},  // Eure-et-Loir
	"29": {48.2500, -4.0500}, // Finistère
	"30": {43.9939, 4.1628},  // Gard
	"31": {43.3583, 1.1703},  // Haute-Garonne
	"32": {43.6500, 0.4500},  // Gers
	"33": {44.8250, -0.5750}, // Gironde
	"34": {43.5833, 3.3667},  // Hérault
	"35": {48.1500, -1.6333}, // Ille-et-Vilaine
	"36": {46.7833, 1.6167},  // Indre
	"37": {47.2500, 0.7500},  // Indre-et-Loire
	"38": {45.2667, 5.5833},  // Isère
	"39": {46.7333, 5.7667},  // Jura
	"40": {43.9667, -0.7833}, // Landes
	"41": {47.6167, 1.4333},  // Loir-et-Cher
	"42": {45.7500, 4.2500},  // Loire
	"43": {45.1333, 3.8333},  // Haute-Loire
	"44": {47.3500, -1.6833}, // Loire-Atlantique
	"45": {47.9167, 2.3000},  // Loiret
	"46": {44.6167, 1.6000},  // Lot
	"47": {44.3667, 0.4500},  // Lot-et-Garonne
	"48": {44.5167, 3.5000},  // Lozère
	"49": {47.4667, -0.5500}, // Maine-et-Loire
	"50": {49.0667, -1.3000}, // Manche
	"51": {48.9500, 4.3000},  // Marne
	"52": {48.1167, 5.2333},  // Haute-Marne
	"53": {48.1333, -0.6500}, // Mayenne
	"54": {48.7833, 6.1667},  // Meurthe-et-Moselle
	"55": {48.9833, 5.3833},  // Meuse
	"56": {47.8333, -2.8333}, // Morbihan
	"57": {49.0333, 6.6667},  // Moselle
	"58": {47.1167, 3.5333},  // Nièvre
	"59": {50.4667, 3.2167},  // Nord
	"60": {49.4167, 2.4167},  // Oise
	"61": {48.6167, 0.1333},  // Orne
	"62": {50.4833, 2.2833},  // Pas-de-Calais
	"63": {45.7167, 3.1500},  // Puy-de-Dôme
	"64": {43.2500, -0.7667}, // Pyrénées-Atlantiques
	"65": {43.0500, 0.1667},  // Hautes-Pyrénées
	"66": {42.6000, 2.5333},  // Pyrénées-Orientales
	"67": {48.6667, 7.5500},  // Bas-Rhin
	"68": {47.8667, 7.2667},  // Haut-Rhin
	"69": {45.8700, 4.6400},  // Rhône
	"70": {47.6333, 6.0833},  // Haute-Saône
	"71": {46.6500, 4.5333},  // Saône-et-Loire
	"72": {48.0000, 0.2167},  // Sarthe
	"73": {45.4667, 6.3833},  // Savoie
	"74": {46.0333, 6.4167},  // Haute-Savoie
	"75": {48.8566, 2.3522},  // Paris
	"76": {49.6500, 1.0333},  // Seine-Maritime
	"77": {48.6167, 2.9333},  // Seine-et-Marne
	"78": {48.8167, 1.8500},  // Yvelines
	"79": {46.5333, -0.3167}, // Deux-Sèvres
	"80": {49.9333, 2.2833},  // Somme
	"81": {43.7833, 2.1667},  // Tarn
	"82": {44.0833, 1.2833},  // Tarn-et-Garonne
	"83": {43.4667, 6.2167},  // Var
	"84": {44.0000, 5.1833},  // Vaucluse
	"85": {46.6667, -1.3333}, // Vendée
	"86": {46.5667, 0.4667},  // Vienne
	"87": {45.8833, 1.2333},  // Haute-Vienne
	"88": {48.1667, 6.3833},  // Vosges
	"89": {47.8333, 3.5667},  // Yonne
	"90": {47.6333, 6.9167},  // Territoire de Belfort
	"91": {48.5167, 2.2500},  // Essonne
	"92": {48.8333, 2.2333},  // Hauts-de-Seine
	"93": {48.9167, 2.4833},  // Seine-Saint-Denis
	"94": {48.7833, 2.4667},  // Val-de-Marne
	"95": {49.0833, 2.1667},  // Val-d'Oise
}
