package zones

// Zone percentage tables, transcribed from the published methodologies.
// Adjacent zones in several tables are intentionally non-contiguous or
// overlapping; each table is preserved exactly as its author specifies it.

type zoneRow struct {
	number   int
	label    string
	lowerPct float64
	upperPct float64
}

type methodDef struct {
	id            string
	name          string
	thresholdType ThresholdType
	rows          []zoneRow
}

var hrMethods = []methodDef{
	{
		id: "joe_friel_run", name: "Joe Friel (Running)", thresholdType: ThresholdLTHR,
		rows: []zoneRow{
			{1, "Recovery", 0.00, 0.85},
			{2, "Extensive Endurance", 0.85, 0.89},
			{3, "Intensive Endurance", 0.90, 0.94},
			{4, "Sub-Threshold", 0.95, 0.99},
			{5, "Super-Threshold (5a)", 1.00, 1.02},
			{6, "Aerobic Capacity (5b)", 1.03, 1.06},
			{7, "Anaerobic Capacity (5c)", 1.06, 1.15},
		},
	},
	{
		id: "joe_friel_cycle", name: "Joe Friel (Cycling)", thresholdType: ThresholdLTHR,
		rows: []zoneRow{
			{1, "Recovery", 0.00, 0.81},
			{2, "Extensive Endurance", 0.81, 0.89},
			{3, "Intensive Endurance", 0.90, 0.93},
			{4, "Sub-Threshold", 0.94, 0.99},
			{5, "Super-Threshold (5a)", 1.00, 1.02},
			{6, "Aerobic Capacity (5b)", 1.03, 1.06},
			{7, "Anaerobic Capacity (5c)", 1.06, 1.15},
		},
	},
	{
		id: "andy_coggan_hr", name: "Andy Coggan", thresholdType: ThresholdLTHR,
		rows: []zoneRow{
			{1, "Active Recovery", 0.00, 0.68},
			{2, "Endurance", 0.69, 0.83},
			{3, "Tempo", 0.84, 0.94},
			{4, "Lactate Threshold", 0.95, 1.05},
			{5, "VO2max", 1.06, 1.15},
		},
	},
	{
		id: "usac", name: "USAC", thresholdType: ThresholdLTHR,
		rows: []zoneRow{
			{1, "Active Recovery", 0.40, 0.67},
			{2, "Endurance", 0.68, 0.82},
			{3, "Tempo", 0.83, 0.92},
			{4, "Threshold", 0.93, 1.02},
			{5, "VO2max / Anaerobic", 1.03, 1.15},
		},
	},
	{
		id: "usat_cycle", name: "USAT for Cycling", thresholdType: ThresholdLTHR,
		rows: []zoneRow{
			{1, "Recovery", 0.00, 0.85},
			{2, "Aerobic", 0.85, 0.89},
			{3, "Tempo", 0.90, 0.94},
			{4, "Sub-Threshold", 0.95, 0.99},
			{5, "Threshold", 1.00, 1.05},
			{6, "Above Threshold", 1.05, 1.15},
		},
	},
	{
		id: "usat_run", name: "USAT for Running", thresholdType: ThresholdLTHR,
		rows: []zoneRow{
			{1, "Recovery", 0.00, 0.85},
			{2, "Aerobic", 0.85, 0.89},
			{3, "Tempo", 0.90, 0.94},
			{4, "Sub-Threshold", 0.95, 0.99},
			{5, "Threshold", 1.00, 1.03},
			{6, "Above Threshold", 1.03, 1.15},
		},
	},
	{
		id: "cyclesmart", name: "CycleSmart", thresholdType: ThresholdLTHR,
		rows: []zoneRow{
			{1, "Recovery", 0.00, 0.75},
			{2, "Endurance", 0.75, 0.85},
			{3, "Tempo", 0.85, 0.92},
			{4, "Threshold", 0.92, 1.00},
			{5, "VO2max+", 1.00, 1.15},
		},
	},
	{
		id: "durata", name: "Durata Training", thresholdType: ThresholdLTHR,
		rows: []zoneRow{
			{1, "Recovery", 0.00, 0.72},
			{2, "Easy Endurance", 0.72, 0.78},
			{3, "Moderate Endurance", 0.78, 0.84},
			{4, "Tempo Low", 0.84, 0.88},
			{5, "Tempo High", 0.88, 0.92},
			{6, "Sub-Threshold", 0.92, 0.96},
			{7, "Threshold", 0.96, 1.00},
			{8, "Supra-Threshold", 1.00, 1.04},
			{9, "VO2max", 1.04, 1.08},
			{10, "Anaerobic", 1.08, 1.20},
		},
	},
	{
		id: "cts_cycle", name: "CTS Cycling", thresholdType: ThresholdLTHR,
		rows: []zoneRow{
			{1, "Easy / Recovery", 0.45, 0.73},
			{2, "Endurance", 0.73, 0.80},
			{3, "Tempo", 0.80, 0.85},
			{4, "Steady State", 0.86, 0.90},
			{5, "Climbing Repeat", 0.95, 0.97},
			{6, "Power Interval", 0.97, 1.10},
		},
	},
	{
		id: "cts_run", name: "CTS Run", thresholdType: ThresholdLTHR,
		rows: []zoneRow{
			{1, "Easy / Recovery", 0.00, 0.75},
			{2, "Endurance", 0.75, 0.84},
			{3, "Tempo", 0.84, 0.88},
			{4, "Steady State", 0.88, 0.95},
			{5, "Threshold+", 0.95, 1.10},
		},
	},
	{
		id: "8020_run", name: "80/20 Running", thresholdType: ThresholdLTHR,
		rows: []zoneRow{
			{1, "Low Aerobic", 0.75, 0.80},
			{2, "Moderate Aerobic", 0.81, 0.89},
			{3, "Transition (X)", 0.90, 0.95},
			{4, "Threshold", 0.96, 1.00},
			{5, "Supra-Threshold", 1.00, 1.02},
			{6, "VO2max", 1.02, 1.06},
			{7, "Speed / Anaerobic", 1.06, 1.15},
		},
	},
	{
		id: "8020_cycle", name: "80/20 Cycling", thresholdType: ThresholdLTHR,
		rows: []zoneRow{
			{1, "Low Aerobic", 0.00, 0.81},
			{2, "Moderate Aerobic", 0.81, 0.90},
			{3, "Transition (X)", 0.90, 0.95},
			{4, "Threshold", 0.95, 1.00},
			{5, "Supra-Threshold", 1.00, 1.02},
			{6, "VO2max", 1.03, 1.06},
			{7, "Anaerobic / Sprint", 1.06, 1.15},
		},
	},
	{
		id: "myprocoach_run", name: "MyProCoach Running", thresholdType: ThresholdLTHR,
		rows: []zoneRow{
			{1, "Recovery", 0.00, 0.80},
			{2, "Endurance", 0.80, 0.88},
			{3, "Tempo", 0.88, 0.94},
			{4, "Threshold", 0.94, 1.00},
			{5, "VO2max+", 1.00, 1.15},
		},
	},
	{
		id: "myprocoach_cycle", name: "MyProCoach Cycling", thresholdType: ThresholdLTHR,
		rows: []zoneRow{
			{1, "Recovery", 0.00, 0.78},
			{2, "Endurance", 0.78, 0.86},
			{3, "Tempo", 0.86, 0.93},
			{4, "Threshold", 0.93, 1.00},
			{5, "VO2max+", 1.00, 1.15},
		},
	},
}

var powerMethods = []methodDef{
	{
		id: "andy_coggan", name: "Andy Coggan", thresholdType: ThresholdFTP,
		rows: []zoneRow{
			{1, "Active Recovery", 0.00, 0.55},
			{2, "Endurance", 0.56, 0.75},
			{3, "Tempo", 0.76, 0.90},
			{4, "Lactate Threshold", 0.91, 1.05},
			{5, "VO2max", 1.06, 1.20},
			{6, "Anaerobic Capacity", 1.21, 1.50},
		},
	},
	{
		id: "durata_power", name: "Durata Training", thresholdType: ThresholdFTP,
		rows: []zoneRow{
			{1, "Recovery", 0.00, 0.50},
			{2, "Easy Endurance", 0.50, 0.64},
			{3, "Moderate Endurance", 0.65, 0.75},
			{4, "Tempo", 0.76, 0.87},
			{5, "Sweet Spot", 0.88, 0.94},
			{6, "Threshold", 0.95, 1.05},
			{7, "VO2max", 1.06, 1.20},
			{8, "Anaerobic", 1.20, 2.00},
		},
	},
	{
		id: "cts_power", name: "CTS", thresholdType: ThresholdFTP,
		rows: []zoneRow{
			{1, "Easy / Recovery", 0.00, 0.45},
			{2, "Endurance Miles", 0.45, 0.73},
			{3, "Tempo", 0.80, 0.85},
			{4, "Steady State", 0.86, 0.90},
			{5, "Climbing Repeat", 0.95, 1.00},
			{6, "Power Interval", 1.00, 1.50},
		},
	},
	{
		id: "usat_cycle_power", name: "USAT for Cycling", thresholdType: ThresholdFTP,
		rows: []zoneRow{
			{1, "Recovery", 0.00, 0.55},
			{2, "Aerobic Endurance", 0.56, 0.75},
			{3, "Tempo", 0.76, 0.90},
			{4, "Sub-Threshold", 0.91, 1.00},
			{5, "Threshold / VO2max", 1.01, 1.15},
			{6, "Anaerobic", 1.15, 2.00},
		},
	},
	{
		id: "8020_run_power", name: "80/20 Running", thresholdType: ThresholdRunningFTP,
		rows: []zoneRow{
			{1, "Low Aerobic", 0.00, 0.80},
			{2, "Moderate Aerobic", 0.80, 0.88},
			{3, "Transition (X)", 0.88, 0.95},
			{4, "Threshold", 0.95, 1.00},
			{5, "Supra-Threshold", 1.00, 1.05},
			{6, "VO2max", 1.05, 1.15},
			{7, "Speed", 1.15, 1.50},
		},
	},
	{
		id: "8020_cycle_power", name: "80/20 Cycling", thresholdType: ThresholdFTP,
		rows: []zoneRow{
			{1, "Low Aerobic", 0.00, 0.55},
			{2, "Moderate Aerobic", 0.55, 0.75},
			{3, "Transition (X)", 0.75, 0.90},
			{4, "Threshold", 0.90, 1.00},
			{5, "Supra-Threshold", 1.00, 1.05},
			{6, "VO2max", 1.05, 1.20},
			{7, "Anaerobic", 1.20, 1.50},
		},
	},
	{
		id: "myprocoach_cycle_power", name: "MyProCoach Cycling", thresholdType: ThresholdFTP,
		rows: []zoneRow{
			{1, "Recovery", 0.00, 0.55},
			{2, "Endurance", 0.55, 0.75},
			{3, "Tempo", 0.76, 0.90},
			{4, "Threshold", 0.91, 1.05},
			{5, "VO2max+", 1.05, 1.50},
		},
	},
	{
		id: "myprocoach_run_power", name: "MyProCoach Running", thresholdType: ThresholdRunningFTP,
		rows: []zoneRow{
			{1, "Recovery", 0.00, 0.78},
			{2, "Endurance", 0.78, 0.88},
			{3, "Tempo", 0.88, 0.95},
			{4, "Threshold", 0.95, 1.05},
			{5, "VO2max+", 1.05, 1.50},
		},
	},
	{
		id: "stryd_run", name: "Stryd Running", thresholdType: ThresholdCriticalPower,
		rows: []zoneRow{
			{1, "Easy", 0.00, 0.80},
			{2, "Light", 0.80, 0.90},
			{3, "Moderate", 0.90, 1.00},
			{4, "Threshold", 1.00, 1.15},
			{5, "High Intensity", 1.15, 2.00},
		},
	},
}
