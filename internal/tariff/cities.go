package tariff

import (
	"sort"

	"github.com/dgallion1/freteiro/internal/textnorm"
)

// cityRegions maps normalized city names to their region. Keys must be in
// textnorm.Normalize form (uppercase, no accents, single spaces).
var cityRegions = map[string]Region{
	"ARAPIRACA": Region1,

	"CRAIBAS":              Region2,
	"IGACI":                Region2,
	"FEIRA GRANDE":         Region2,
	"ARAPIRACA ZONA RURAL": Region2,

	"PALMEIRA DOS INDIOS": Region3,
	"BELEM":               Region3,
	"TANQUE D'ARCA":       Region3,
	"COITE DO NOIA":       Region3,
	"TAQUARANA":           Region3,
	"LIMOEIRO DE ANADIA":  Region3,

	"GIRAU DO PORCIANO":  Region4,
	"CAMPO ALEGRE":       Region4,
	"TRAIPU":             Region4,
	"OLHO D'AGUA GRANDE": Region4,
	"SAO BRAS":           Region4,
	"LAGOA DA CANOA":     Region4,

	"BATALHA":            Region5,
	"BELO MONTE":         Region5,
	"CACIMBINHAS":        Region5,
	"JACARE DOS HOMENS":  Region5,
	"MONEIROPOLIS":       Region5,
	"MAJOR ISIDORO":      Region5,
	"JARAMATAIA":         Region5,
	"ESTRELA DE ALAGOAS": Region5,
	"DOIS RIACHOS":       Region5,
	"MINADOR DO NEGRAO":  Region5,
	"QUEBRANGULO":        Region5,

	"SANTANA DO IPANEMA":     Region6,
	"MARAVILHA":              Region6,
	"POCO DAS TRINCHEIRAS":   Region6,
	"SENADOR RUI PALMEIRA":   Region6,
	"CARNEIROS":              Region6,
	"SAO JOSE DA TAPERA":     Region6,
	"PAO DE ACUCAR":          Region6,
	"PALESTINA":              Region6,
	"OLHO D'AGUA DAS FLORES": Region6,
	"OLIVENCA":               Region6,
	"VICOSA":                 Region6,
	"ATALAIA":                Region6,
	"CAJUEIRO":               Region6,
	"CAPELA":                 Region6,
}

// ResolveRegion maps free-form city text to its region. A miss, including
// empty input, resolves to Unresolved.
func ResolveRegion(city string) Region {
	if r, ok := cityRegions[textnorm.Normalize(city)]; ok {
		return r
	}
	return Unresolved
}

// Cities returns the normalized city names known for a region, sorted.
func Cities(region Region) []string {
	var out []string
	for city, r := range cityRegions {
		if r == region {
			out = append(out, city)
		}
	}
	sort.Strings(out)
	return out
}
