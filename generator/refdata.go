package generator

import (
	"fmt"
	"math/rand"
	"regexp"
	"time"
)

// Reference data for Irish demographics. These tables are static
// configuration consumed by the mutator; the values are plausible but
// entirely synthetic.

var irishHospitals = []string{
	"St James's Hospital",
	"Beaumont Hospital",
	"Mater Misericordiae University Hospital",
	"St Vincent's University Hospital",
	"Tallaght University Hospital",
	"Cork University Hospital",
	"University Hospital Galway",
	"University Hospital Limerick",
	"University Hospital Waterford",
	"Sligo University Hospital",
	"Our Lady of Lourdes Hospital",
	"Connolly Hospital Blanchardstown",
	"St Luke's General Hospital Kilkenny",
	"Wexford General Hospital",
	"Letterkenny University Hospital",
	"Mayo University Hospital",
	"Portiuncula University Hospital",
	"St Vincents Hospital",
	"Cavan Hospital",
	"St Lukes Hospital",
	"Mercy University Hospital Cork",
}

var irishCounties = []string{
	"CARLOW", "CAVAN", "CLARE", "CORK", "DONEGAL", "DUBLIN", "GALWAY", "KERRY",
	"KILDARE", "KILKENNY", "LAOIS", "LEITRIM", "LIMERICK", "LONGFORD", "LOUTH",
	"MAYO", "MEATH", "MONAGHAN", "OFFALY", "ROSCOMMON", "SLIGO", "TIPPERARY",
	"WATERFORD", "WESTMEATH", "WEXFORD", "WICKLOW",
}

var townsByCounty = map[string][]string{
	"CARLOW":    {"Carlow", "Tullow", "Bagenalstown"},
	"CAVAN":     {"Cavan", "Bailieborough", "Virginia"},
	"CLARE":     {"Ennis", "Shannon", "Kilrush"},
	"CORK":      {"Cork", "Mallow", "Midleton", "Bandon", "Clonakilty", "Youghal"},
	"DONEGAL":   {"Letterkenny", "Buncrana", "Donegal", "Ballybofey"},
	"DUBLIN":    {"Dublin", "Swords", "Tallaght", "Clondalkin", "Dún Laoghaire", "Blanchardstown"},
	"GALWAY":    {"Galway", "Tuam", "Loughrea", "Ballinasloe", "Oranmore"},
	"KERRY":     {"Tralee", "Killarney", "Dingle", "Listowel"},
	"KILDARE":   {"Naas", "Newbridge", "Maynooth", "Kildare"},
	"KILKENNY":  {"Kilkenny", "Thomastown", "Castlecomer"},
	"LAOIS":     {"Portlaoise", "Portarlington", "Mountmellick"},
	"LEITRIM":   {"Carrick-on-Shannon", "Manorhamilton", "Ballinamore"},
	"LIMERICK":  {"Limerick", "Newcastle West", "Kilmallock", "Adare"},
	"LONGFORD":  {"Longford", "Granard", "Edgeworthstown"},
	"LOUTH":     {"Dundalk", "Drogheda", "Ardee"},
	"MAYO":      {"Castlebar", "Ballina", "Westport"},
	"MEATH":     {"Navan", "Trim", "Kells", "Ashbourne"},
	"MONAGHAN":  {"Monaghan", "Carrickmacross", "Castleblayney"},
	"OFFALY":    {"Tullamore", "Birr", "Edenderry"},
	"ROSCOMMON": {"Roscommon", "Boyle", "Castlerea"},
	"SLIGO":     {"Sligo", "Tubbercurry", "Ballymote"},
	"TIPPERARY": {"Nenagh", "Thurles", "Clonmel", "Tipperary"},
	"WATERFORD": {"Waterford", "Dungarvan", "Tramore"},
	"WESTMEATH": {"Mullingar", "Athlone", "Moate"},
	"WEXFORD":   {"Wexford", "Gorey", "Enniscorthy", "New Ross"},
	"WICKLOW":   {"Wicklow", "Bray", "Greystones", "Arklow"},
}

var eircodeRoutingKeys = []string{
	"D01", "D02", "D03", "D04", "D05", "D06", "D07", "D08", "D09", "D10", "D11", "D12", "D13", "D14", "D15", "D16",
	"D17", "D18", "D20", "D22", "D24",
	"T12", "T23", "T34", "T45", "T56",
	"H91", "V94", "V92", "F92", "F91", "A94", "A96", "K67", "R95", "X91",
	"V42", "V31", "P85", "N37", "Y35",
}

// Eircode unique identifiers avoid the letters I and O.
const eircodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ0123456789"

var eircodeRe = regexp.MustCompile(`^[A-Z0-9]{3}\s?[A-Z0-9]{4}$`)

var streetNames = []string{
	"Main Street", "Church Road", "Chapel Lane", "Mill Road", "The Green",
	"Castle Street", "Bridge Street", "Harbour Road", "Abbey Road", "New Road",
	"Station Road", "Ashe Street", "Patrick Street", "O'Connell Street",
	"College Road", "Strand Road", "Rock Road", "The Crescent", "Garryowen Road",
	"Barrack Street", "Emmet Square", "Sarsfield Street", "Friar Street",
	"Parnell Road",
}

var maleFirstNames = []string{
	"Liam", "Sean", "Conor", "Cian", "Oisin", "Fionn", "Darragh", "Eoin",
	"Cathal", "Padraig", "Declan", "Niall", "Ronan", "Tadhg", "Shane",
	"Cormac", "Brendan", "Colm", "Fergal", "Aidan", "Kevin", "Michael",
	"Patrick", "James", "Thomas", "Daniel", "Brian", "Kieran", "Rory",
	"Donal",
}

var femaleFirstNames = []string{
	"Aoife", "Saoirse", "Niamh", "Ciara", "Roisin", "Siobhan", "Aisling",
	"Orla", "Grainne", "Sinead", "Maeve", "Clodagh", "Eimear", "Fiona",
	"Deirdre", "Una", "Caoimhe", "Aine", "Mairead", "Nuala", "Mary",
	"Catherine", "Margaret", "Bridget", "Eileen", "Sorcha", "Laoise",
	"Emer", "Dervla", "Blathnaid",
}

var familyNames = []string{
	"Murphy", "Kelly", "O'Sullivan", "Walsh", "Smith", "O'Brien", "Byrne",
	"Ryan", "O'Connor", "O'Neill", "O'Reilly", "Doyle", "McCarthy",
	"Gallagher", "Doherty", "Kennedy", "Lynch", "Murray", "Quinn", "Moore",
	"McLoughlin", "Carroll", "Connolly", "Daly", "Connell", "Wilson",
	"Dunne", "Brennan", "Burke", "Collins", "Campbell", "Clarke", "Hughes",
	"Farrell", "Fitzgerald", "Brown", "Martin", "Maguire", "Nolan",
	"Flynn", "Thompson", "O'Callaghan", "O'Donnell", "Duffy", "Mahony",
	"Boyle", "Healy", "Shea", "White", "Sweeney",
}

var clinicianTitles = []string{"DR", "PROF", "MR", "MS"}

// randomEircode returns a synthetic Eircode with a real routing key.
func randomEircode(rng *rand.Rand) string {
	rk := eircodeRoutingKeys[rng.Intn(len(eircodeRoutingKeys))]
	tail := make([]byte, 4)
	for i := range tail {
		tail[i] = eircodeAlphabet[rng.Intn(len(eircodeAlphabet))]
	}
	e := rk + " " + string(tail)
	if !eircodeRe.MatchString(e) {
		return "D02 X285"
	}
	return e
}

// randomPhone returns an Irish phone number: mostly mobiles, with a mix of
// Dublin and regional landlines.
func randomPhone(rng *rand.Rand) string {
	r := rng.Float64()
	if r < 0.70 {
		prefixes := []string{"083", "085", "086", "087", "089"}
		prefix := prefixes[rng.Intn(len(prefixes))]
		return fmt.Sprintf("+353 %s %d", prefix[1:], 1000000+rng.Intn(9000000))
	}
	if r < 0.85 {
		return fmt.Sprintf("+353 1 %d", 1000000+rng.Intn(9000000))
	}
	areas := []string{"21", "51", "61", "91", "65", "74"}
	return fmt.Sprintf("+353 %s %d", areas[rng.Intn(len(areas))], 100000+rng.Intn(900000))
}

// randomAddress returns (line1, town, county, eircode), all upper-cased.
func randomAddress(rng *rand.Rand) (string, string, string, string) {
	county := irishCounties[rng.Intn(len(irishCounties))]
	towns := townsByCounty[county]
	town := towns[rng.Intn(len(towns))]
	house := 1 + rng.Intn(250)
	street := streetNames[rng.Intn(len(streetNames))]
	line1 := upper(fmt.Sprintf("%d %s", house, street))
	return line1, upper(town), upper(county), randomEircode(rng)
}

// randomGivenName returns a first name matching the HL7 sex code.
func randomGivenName(rng *rand.Rand, sex string) string {
	if sex == "M" {
		return maleFirstNames[rng.Intn(len(maleFirstNames))]
	}
	return femaleFirstNames[rng.Intn(len(femaleFirstNames))]
}

// randomFamilyName returns a surname from the pool.
func randomFamilyName(rng *rand.Rand) string {
	return familyNames[rng.Intn(len(familyNames))]
}

// randomHospital returns a hospital name from the pool.
func randomHospital(rng *rand.Rand) string {
	return irishHospitals[rng.Intn(len(irishHospitals))]
}

// randomDOB returns an HL7 date of birth for an age between 1 and 95.
func randomDOB(rng *rand.Rand, now time.Time) string {
	years := 1 + rng.Intn(95)
	dob := now.AddDate(-years, 0, -rng.Intn(365))
	return hl7Date(dob)
}
