package scrape

// DefaultSubjectCodes enumerates every subject prefix the portal's
// course catalog carries. The portal has no "all subjects" search, so
// a full run is one search per code.
var DefaultSubjectCodes = []string{
	"ACG", "ADE", "ADV", "AFA", "AFH", "AFR", "AMH", "AML", "ANT", "APK", "ARA",
	"ARC", "ARE", "ARH", "ART", "ASH", "ASL", "AST", "ATR", "BCH", "BME", "BOT",
	"BSC", "BTE", "BUL", "CAI", "CAP", "CCE", "CCJ", "CDA", "CEG", "CEN", "CES",
	"CGN", "CGS", "CHI", "CHM", "CHS", "CIS", "CJC", "CJE", "CJJ", "CJL", "CJT",
	"CLP", "CLT", "CNT", "COM", "COP", "COT", "CPO", "CRW", "CWR", "DAA", "DAE",
	"DAN", "DEP", "DIG", "DSC", "EAB", "EAP", "EAS", "ECM", "ECO", "ECP", "ECS",
	"ECT", "ECW", "EDE", "EDF", "EDG", "EDP", "EEC", "EEE", "EEL", "EES", "EEX",
	"EGM", "EGN", "EGS", "EIN", "EMA", "EME", "EML", "ENC", "ENG", "ENL", "ENT",
	"ENV", "ENY", "ESE", "ESI", "EUH", "EVR", "EXP", "FIL", "FIN", "FLE", "FOL",
	"FRE", "FRT", "FRW", "FSS", "GEA", "GEB", "GEO", "GER", "GEW", "GEY", "GIS",
	"GLY", "GRA", "HAI", "HAT", "HBR", "HCW", "HFT", "HIM", "HIS", "HLP", "HSA",
	"HSC", "HUM", "HUN", "IDH", "IDS", "IHS", "INP", "INR", "ISC", "ITA", "ITT",
	"ITW", "JOU", "JPN", "JST", "KOR", "LAE", "LAH", "LAS", "LDR", "LIN", "LIT",
	"MAA", "MAC", "MAD", "MAE", "MAN", "MAP", "MAR", "MAS", "MAT", "MCB", "MET",
	"MGF", "MHF", "MHS", "MLS", "MMC", "MSL", "MTG", "MUC", "MUE", "MUG", "MUH",
	"MUL", "MUM", "MUN", "MUO", "MUS", "MUT", "MVB", "MVJ", "MVK", "MVP", "MVS",
	"MVV", "MVW", "NSP", "NUR", "OCE", "OSE", "PAD", "PAZ", "PCB", "PCO", "PEL",
	"PEM", "PEO", "PET", "PGY", "PHH", "PHI", "PHM", "PHP", "PHT", "PHY", "PHZ",
	"PLA", "POR", "POS", "POT", "PPE", "PSB", "PSC", "PSY", "PUP", "PUR", "QMB",
	"RED", "REE", "REL", "RMI", "RTV", "RUS", "RUT", "SCC", "SCE", "SLS", "SOP",
	"SOW", "SPA", "SPB", "SPC", "SPM", "SPN", "SPT", "SPW", "SSE", "STA", "SYA",
	"SYD", "SYG", "SYO", "SYP", "TAX", "THE", "TPA", "TPP", "TSL", "TTE", "VIC",
	"WOH", "WST", "ZOO",
}
