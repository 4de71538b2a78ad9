package station

import (
	"sort"
	"strings"
)

// registry is the full set of surface observing stations available for
// diagnostics, keyed by short code. The table is constant data loaded once at
// process start; enrichment with coordinates happens on per-run Station
// copies, never here.
var registry = map[string]Station{
	"nmb": {Code: "nmb", Name: "Gobabeb"},
	"est": {Code: "est", Name: "Esther, Alberta"},
	"ask": {Code: "ask", Name: "Assekrem"},
	"nor": {Code: "nor", Name: "Norunda"},
	"brw": {Code: "brw", Name: "Barrow Atmospheric Baseline Observatory"},
	"spo": {Code: "spo", Name: "South Pole, Antarctica"},
	"wsa": {Code: "wsa", Name: "Sable Island, Nova Scotia"},
	"fsd": {Code: "fsd", Name: "Fraserdale"},
	"hdp": {Code: "hdp", Name: "Hidden Peak (Snowbird), Utah"},
	"htm": {Code: "htm", Name: "Hyltemossa"},
	"inx": {Code: "inx", Name: "INFLUX (Indianapolis Flux Experiment)"},
	"rrl": {Code: "rrl", Name: "Round Lake, Minnesota"},
	"svb": {Code: "svb", Name: "Svartberget"},
	"lin": {Code: "lin", Name: "Lindenberg"},
	"kzm": {Code: "kzm", Name: "Plateau Assy"},
	"ssc": {Code: "ssc", Name: "Sierra de Segura"},
	"toh": {Code: "toh", Name: "Torfhaus"},
	"inx05": {Code: "inx05", Name: "INFLUX Site - tower 5"},
	"eic": {Code: "eic", Name: "Easter Island"},
	"gat": {Code: "gat", Name: "Gartow"},
	"ong": {Code: "ong", Name: "Burns, Oregon"},
	"cib": {Code: "cib", Name: "Centro de Investigacion de la Baja Atmosfera (CIBA)"},
	"smo": {Code: "smo", Name: "Tutuila"},
	"abt": {Code: "abt", Name: "Abbotsford, British Columbia"},
	"hsu": {Code: "hsu", Name: "Humboldt State University"},
	"nat": {Code: "nat", Name: "Farol De Mae Luiza Lighthouse"},
	"pal": {Code: "pal", Name: "Pallas-Sammaltunturi, GAW Station"},
	"gif": {Code: "gif", Name: "Gif sur Yvette"},
	"sey": {Code: "sey", Name: "Mahe Island"},
	"bcs": {Code: "bcs", Name: "Baja California Sur"},
	"amt": {Code: "amt", Name: "Argyle, Maine"},
	"mlo": {Code: "mlo", Name: "Mauna Loa, Hawaii"},
	"inx14": {Code: "inx14", Name: "INFLUX Site - tower 14"},
	"cpt": {Code: "cpt", Name: "Cape Point"},
	"mbo": {Code: "mbo", Name: "Mt. Bachelor Observatory"},
	"cya": {Code: "cya", Name: "Casey, Antarctica"},
	"ota": {Code: "ota", Name: "Otway, Victoria"},
	"bal": {Code: "bal", Name: "Baltic Sea"},
	"kre": {Code: "kre", Name: "Kresin u Pacova"},
	"jfj": {Code: "jfj", Name: "Jungfraujoch"},
	"opw": {Code: "opw", Name: "Olympic Peninsula, Washington"},
	"bhd": {Code: "bhd", Name: "Baring Head Station"},
	"omp": {Code: "omp", Name: "Marys Peak, Oregon"},
	"bnt": {Code: "bnt", Name: "Bennett Island, Russia"},
	"acv": {Code: "acv", Name: "Canaan Valley, West Virginia"},
	"inx02": {Code: "inx02", Name: "INFLUX Site - tower 2"},
	"hei": {Code: "hei", Name: "Heidelberg"},
	"sdz": {Code: "sdz", Name: "Shangdianzi"},
	"bir": {Code: "bir", Name: "Birkenes Observatory"},
	"wis": {Code: "wis", Name: "Weizmann Institute of Science at the Arava Institute, Ketura"},
	"mhd": {Code: "mhd", Name: "Mace Head, County Galway"},
	"ush": {Code: "ush", Name: "Ushuaia"},
	"puy": {Code: "puy", Name: "Puy de Dome"},
	"wlg": {Code: "wlg", Name: "Mt. Waliguan"},
	"ipr": {Code: "ipr", Name: "Ispra"},
	"kas": {Code: "kas", Name: "Kasprowy Wierch, High Tatra"},
	"prs": {Code: "prs", Name: "Plateau Rosa Station"},
	"fpk": {Code: "fpk", Name: "Fort Peck, Montana"},
	"rce": {Code: "rce", Name: "Centerville, Iowa"},
	"lmu": {Code: "lmu", Name: "La Muela"},
	"dec": {Code: "dec", Name: "Delta de l'Ebre"},
	"inx13": {Code: "inx13", Name: "INFLUX Site - tower 13"},
	"mkn": {Code: "mkn", Name: "Mt. Kenya"},
	"rba": {Code: "rba", Name: "Roof Butte, Arizona"},
	"sgp": {Code: "sgp", Name: "Southern Great Plains, Oklahoma"},
	"alt": {Code: "alt", Name: "Alert, Nunavut"},
	"maa": {Code: "maa", Name: "Mawson Station, Antarctica"},
	"hpb": {Code: "hpb", Name: "Hohenpeissenberg"},
	"msh": {Code: "msh", Name: "Mashpee, Massachusetts"},
	"esp": {Code: "esp", Name: "Estevan Point,  British Columbia"},
	"gpa": {Code: "gpa", Name: "Gunn Point"},
	"cdl": {Code: "cdl", Name: "Candle Lake, Saskatchewan"},
	"str": {Code: "str", Name: "Sutro Tower, San Francisco, California"},
	"lef": {Code: "lef", Name: "Park Falls, Wisconsin"},
	"yon": {Code: "yon", Name: "Yonagunijima"},
	"run": {Code: "run", Name: "La Réunion"},
	"cmn": {Code: "cmn", Name: "Mt. Cimone Station"},
	"vac": {Code: "vac", Name: "Valderejo"},
	"inx04": {Code: "inx04", Name: "INFLUX Site - tower 4"},
	"oxk": {Code: "oxk", Name: "Ochsenkopf"},
	"ryo": {Code: "ryo", Name: "Ryori"},
	"spl": {Code: "spl", Name: "Storm Peak Laboratory (Desert Research Institute)"},
	"chm": {Code: "chm", Name: "Chibougamau, Quebec"},
	"dsi": {Code: "dsi", Name: "Dongsha Island"},
	"wkt": {Code: "wkt", Name: "Moody, Texas"},
	"nwr": {Code: "nwr", Name: "Niwot Ridge, Colorado"},
	"smr": {Code: "smr", Name: "Hyytiala"},
	"lpo": {Code: "lpo", Name: "Ile Grande"},
	"sct": {Code: "sct", Name: "Beech Island, South Carolina"},
	"chr": {Code: "chr", Name: "Christmas Island"},
	"tpd": {Code: "tpd", Name: "Turkey Point, Ontario"},
	"goz": {Code: "goz", Name: "Dwejra Point, Gozo"},
	"oli": {Code: "oli", Name: "Oliktok Point, Alaska"},
	"lut": {Code: "lut", Name: "Lutjewad"},
	"inx12": {Code: "inx12", Name: "INFLUX Site - tower 12"},
	"cba": {Code: "cba", Name: "Cold Bay, Alaska"},
	"key": {Code: "key", Name: "Key Biscayne, Florida"},
	"izo": {Code: "izo", Name: "Izana, Tenerife, Canary Islands"},
	"wbi": {Code: "wbi", Name: "West Branch, Iowa"},
	"mex": {Code: "mex", Name: "High Altitude Global Climate Observation Center"},
	"snp": {Code: "snp", Name: "Shenandoah National Park"},
	"mid": {Code: "mid", Name: "Sand Island, Midway"},
	"cps": {Code: "cps", Name: "Chapais,Quebec"},
	"obn": {Code: "obn", Name: "Obninsk"},
	"ams": {Code: "ams", Name: "Amsterdam Island"},
	"cit": {Code: "cit", Name: "Pasadena, CA"},
	"inx03": {Code: "inx03", Name: "INFLUX Site - tower 3"},
	"mqa": {Code: "mqa", Name: "Macquarie Island"},
	"kit": {Code: "kit", Name: "Karlsruhe"},
	"wao": {Code: "wao", Name: "Weybourne, Norfolk"},
	"azr": {Code: "azr", Name: "Terceira Island, Azores"},
	"pdm": {Code: "pdm", Name: "Pic Du Midi"},
	"ope": {Code: "ope", Name: "Observatoire perenne de l'environnement"},
	"uto": {Code: "uto", Name: "Uto"},
	"uum": {Code: "uum", Name: "Ulaan Uul"},
	"hba": {Code: "hba", Name: "Halley Station, Antarctica"},
	"syo": {Code: "syo", Name: "Syowa Station, Antarctica"},
	"xic": {Code: "xic", Name: "Sierra de Xures"},
	"ice": {Code: "ice", Name: "Storhofdi, Vestmannaeyjar"},
	"crz": {Code: "crz", Name: "Crozet Island"},
	"inu": {Code: "inu", Name: "Inuvik,Northwest Territories"},
	"fkl": {Code: "fkl", Name: "Finokalia, Crete"},
	"crv": {Code: "crv", Name: "Carbon in Arctic Reservoirs Vulnerability Experiment (CARVE)"},
	"psa": {Code: "psa", Name: "Palmer Station, Antarctica"},
	"inx11": {Code: "inx11", Name: "INFLUX Site - tower 11"},
	"stm": {Code: "stm", Name: "Ocean Station M"},
	"rmm": {Code: "rmm", Name: "Mead, Nebraska"},
	"bme": {Code: "bme", Name: "St. Davids Head, Bermuda"},
	"eec": {Code: "eec", Name: "El Estrecho"},
	"ara": {Code: "ara", Name: "Arcturus, Queensland"},
	"cgo": {Code: "cgo", Name: "Cape Grim, Tasmania"},
	"trn": {Code: "trn", Name: "Trainou"},
	"etl": {Code: "etl", Name: "East Trout Lake, Saskatchewan"},
	"rgv": {Code: "rgv", Name: "Galesville, Wisconsin"},
	"ame": {Code: "ame", Name: "Mead, Nebraska"},
	"fne": {Code: "fne", Name: "Fort Nelson, British Columbia"},
	"rpb": {Code: "rpb", Name: "Ragged Point"},
	"hnp": {Code: "hnp", Name: "Hanlan's Point, Ontario"},
	"stp": {Code: "stp", Name: "Ocean Station P"},
	"asc": {Code: "asc", Name: "Ascension Island"},
	"lew": {Code: "lew", Name: "Lewisburg, Pennsylvania"},
	"zep": {Code: "zep", Name: "Ny-Alesund, Svalbard"},
	"bmw": {Code: "bmw", Name: "Tudor Hill, Bermuda"},
	"wgc": {Code: "wgc", Name: "Walnut Grove, California"},
	"ell": {Code: "ell", Name: "Estany Llong"},
	"abp": {Code: "abp", Name: "Arembepe, Bahia"},
	"bra": {Code: "bra", Name: "Bratt's Lake Saskatchewan"},
	"uta": {Code: "uta", Name: "Wendover, Utah"},
	"inx08": {Code: "inx08", Name: "INFLUX Site - tower 8"},
	"cpa": {Code: "cpa", Name: "Charles Point, Darwin"},
	"ena": {Code: "ena", Name: "Eastern North Atlantic, Graciosa, Azores"},
	"owa": {Code: "owa", Name: "Walton, Oregon"},
	"ssl": {Code: "ssl", Name: "Schauinsland, Baden-Wuerttemberg"},
	"egb": {Code: "egb", Name: "Egbert, Ontario"},
	"bck": {Code: "bck", Name: "Behchoko, Northwest Territories"},
	"kum": {Code: "kum", Name: "Cape Kumukahi, Hawaii"},
	"sis": {Code: "sis", Name: "Shetland Islands"},
	"cfa": {Code: "cfa", Name: "Cape Ferguson, Queensland"},
	"cmo": {Code: "cmo", Name: "Cape Meares, Oregon"},
	"llb": {Code: "llb", Name: "Lac La Biche, Alberta"},
	"blk": {Code: "blk", Name: "Baker Lake, Nunavut"},
	"gic": {Code: "gic", Name: "Sierra de Gredos"},
	"cby": {Code: "cby", Name: "Cambridge Bay, Nunavut Territory"},
	"gmi": {Code: "gmi", Name: "Mariana Islands"},
	"bu": {Code: "bu", Name: "Boston University"},
	"cri": {Code: "cri", Name: "Cape Rama"},
	"ljo": {Code: "ljo", Name: "La Jolla, California"},
	"lln": {Code: "lln", Name: "Lulin"},
	"tap": {Code: "tap", Name: "Tae-ahn Peninsula"},
	"inx07": {Code: "inx07", Name: "INFLUX Site - tower 7"},
	"bsc": {Code: "bsc", Name: "Black Sea, Constanta"},
	"tik": {Code: "tik", Name: "Hydrometeorological Observatory of Tiksi"},
	"chl": {Code: "chl", Name: "Churchill, Manitoba"},
	"pv": {Code: "pv", Name: "Palos Verdes Peninsula, CA"},
	"lmp": {Code: "lmp", Name: "Lampedusa"},
	"sgi": {Code: "sgi", Name: "Bird Island, South Georgia"},
	"bgu": {Code: "bgu", Name: "Begur"},
	"aoz": {Code: "aoz", Name: "Missouri Ozark, Missouri"},
	"sum": {Code: "sum", Name: "Summit"},
	"avi": {Code: "avi", Name: "St. Croix, Virgin Islands"},
	"shm": {Code: "shm", Name: "Shemya Island, Alaska"},
	"mrc": {Code: "mrc", Name: "Marcellus Pennsylvania"},
	"ofr": {Code: "ofr", Name: "Fir, Oregon"},
	"inx01": {Code: "inx01", Name: "INFLUX Site - tower 1"},
	"mvy": {Code: "mvy", Name: "Marthas Vineyard, Massachusetts"},
	"thd": {Code: "thd", Name: "Trinidad Head, California"},
	"mbc": {Code: "mbc", Name: "Mould Bay, Northwest Territories"},
	"kzd": {Code: "kzd", Name: "Sary Taukum"},
	"amy": {Code: "amy", Name: "Anmyeon-do"},
	"rkw": {Code: "rkw", Name: "Kewanee, Illinois"},
	"mnm": {Code: "mnm", Name: "Minamitorishima"},
	"inx10": {Code: "inx10", Name: "INFLUX Site - tower 10"},
	"bkt": {Code: "bkt", Name: "Bukit Kototabang"},
	"tac": {Code: "tac", Name: "Tacolneston"},
	"omt": {Code: "omt", Name: "Metolius, Oregon"},
	"acr": {Code: "acr", Name: "Chestnut Ridge, Tennessee"},
	"stc": {Code: "stc", Name: "Ocean Station Charlie"},
	"inx06": {Code: "inx06", Name: "INFLUX Site - tower 6"},
	"hun": {Code: "hun", Name: "Hegyhatsal"},
	"oyq": {Code: "oyq", Name: "Yaquina Head, Oregon"},
	"pta": {Code: "pta", Name: "Point Arena, California"},
	"rk1": {Code: "rk1", Name: "Kermadec Island"},
	"mwo": {Code: "mwo", Name: "Mt. Wilson Observatory"},
	"inx09": {Code: "inx09", Name: "INFLUX Site - tower 9"},
	"aac": {Code: "aac", Name: "Austin Cary Memorial Forest, Gainesville, FL"},
	"bao": {Code: "bao", Name: "Boulder Atmospheric Observatory, Colorado"},}

// Lookup returns the registry entry for code (case-insensitive) and whether
// the code is known.
func Lookup(code string) (Station, bool) {
	s, ok := registry[strings.ToLower(code)]
	return s, ok
}

// Known reports whether code names a registered station.
func Known(code string) bool {
	_, ok := Lookup(code)
	return ok
}

// Codes returns all registered station codes in ascending order.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// All returns copies of every registered station, ordered by code.
func All() []Station {
	codes := Codes()
	out := make([]Station, 0, len(codes))
	for _, code := range codes {
		out = append(out, registry[code])
	}
	return out
}
