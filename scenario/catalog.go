package scenario

// The curated catalog. Each scenario binds an ICD-10 diagnosis to the
// presentations, investigations, procedures and medications that belong to
// that clinical theme, so every field of a generated message tells the same
// story.
var catalog = map[string]*Scenario{
	"J18.9": {
		Code:    "J18.9",
		Display: "Pneumonia, unspecified organism",
		System:  "I10",
		Presentations: []string{
			"cough, fever and shortness of breath",
			"productive cough with pleuritic chest pain and fever",
			"dyspnoea with raised inflammatory markers",
			"worsening cough and fever over several days",
			"chest tightness with low oxygen saturation on exertion",
		},
		TestsCore: []string{
			"Bloods: FBC, CRP, U&E, LFTs",
			"Chest X-ray (CXR)",
			"Observations incl. oxygen saturation",
		},
		TestsOptional: []string{
			"Blood cultures (if febrile/septic)",
			"Sputum culture (if productive cough)",
			"Viral PCR swab (seasonal)",
			"ABG/VBG (if hypoxic)",
			"Lactate (if sepsis suspected)",
		},
	},
	"N39.0": {
		Code:    "N39.0",
		Display: "Urinary tract infection, site not specified",
		System:  "I10",
		Presentations: []string{
			"dysuria with urinary frequency and suprapubic discomfort",
			"lower urinary tract symptoms with fever",
			"urinary symptoms with raised inflammatory markers",
			"flank discomfort with urinary symptoms and fever",
			"new urinary frequency with dysuria and malaise",
		},
		TestsCore: []string{
			"Urinalysis / dipstick",
			"Urine culture & sensitivity (MC&S)",
			"Bloods: FBC, CRP, U&E (if unwell/complicated)",
		},
		TestsOptional: []string{
			"Blood cultures (if febrile/septic)",
			"Renal ultrasound (if flank pain / obstruction suspected)",
			"Pregnancy test (if relevant)",
		},
	},
	"I10": {
		Code:    "I10",
		Display: "Essential (primary) hypertension",
		System:  "I10",
		Presentations: []string{
			"persistently elevated blood pressure readings",
			"hypertension identified during admission assessment",
			"raised blood pressure requiring monitoring and review",
			"elevated blood pressure noted on repeated observations",
			"newly identified hypertension on routine checks",
		},
		TestsCore: []string{
			"Repeat BP measurements (including correct cuff size/position)",
			"Bloods: U&E/creatinine, electrolytes",
			"Urinalysis (protein/haematuria)",
			"ECG",
		},
		TestsOptional: []string{
			"HbA1c / fasting glucose",
			"Lipid profile",
			"Urine ACR (albumin:creatinine ratio)",
			"Chest X-ray (if indicated)",
		},
	},
	"E11.9": {
		Code:    "E11.9",
		Display: "Type 2 diabetes mellitus without complications",
		System:  "I10",
		Presentations: []string{
			"hyperglycaemia on admission assessment",
			"raised HbA1c suggesting suboptimal glycaemic control",
			"elevated capillary blood glucose readings",
			"hyperglycaemia requiring monitoring and medication review",
		},
		TestsCore: []string{
			"Capillary blood glucose monitoring",
			"HbA1c",
			"Bloods: U&E/creatinine",
			"Lipid profile",
		},
		TestsOptional: []string{
			"Urine ACR (albumin:creatinine ratio)",
			"Ketones (if unwell / very high glucose)",
			"ECG (baseline cardiovascular assessment)",
		},
	},
	"S72.001A": {
		Code:    "S72.001A",
		Display: "Fracture of unspecified part of neck of right femur",
		System:  "I10",
		Presentations: []string{
			"fall with hip pain and reduced mobility",
			"hip pain following trauma with inability to weight bear",
			"suspected hip fracture after a fall",
			"mechanical fall with immediate hip pain and shortened, externally rotated leg",
		},
		TestsCore: []string{
			"X-ray: hip/pelvis",
			"Bloods: FBC, U&E/creatinine",
			"Coagulation profile (if indicated)",
			"Group & save / crossmatch (peri-operative planning)",
			"ECG (pre-op assessment)",
		},
		TestsOptional: []string{
			"CT/MRI hip (if occult fracture suspected)",
			"Chest X-ray (pre-op / if indicated)",
		},
	},
}

// FallbackPool lists the diagnoses used for round-robin selection when
// neither a forced scenario nor a seed condition applies.
var FallbackPool = []Diagnosis{
	{Code: "I10", Display: "Essential (primary) hypertension", System: "I10"},
	{Code: "E11.9", Display: "Type 2 diabetes mellitus without complications", System: "I10"},
	{Code: "J18.9", Display: "Pneumonia, unspecified organism", System: "I10"},
	{Code: "N39.0", Display: "Urinary tract infection, site not specified", System: "I10"},
	{Code: "S72.001A", Display: "Fracture of unspecified part of neck of right femur", System: "I10"},
}

// Procedures returns the curated procedure content for the scenario. The
// list is cycled by occurrence index when a template carries more procedure
// groups than curated items; content never strays from the scenario's theme.
func (s *Scenario) Procedures() []Procedure {
	switch s.Code {
	case "S72.001A":
		return []Procedure{
			{
				Code:        "XR-HIP-PELVIS",
				Label:       "X-ray (Chest/Pelvis/Hip)",
				System:      "SCT",
				Description: "X-ray chest, pelvis and right hip performed; findings consistent with hip fracture; chest imaging without acute abnormality.",
			},
			{
				Code:        "ECG-12LEAD",
				Label:       "ECG",
				System:      "SCT",
				Description: "12-lead ECG performed as part of pre-operative assessment; no acute abnormalities documented.",
			},
		}
	case "I10":
		return []Procedure{
			{
				Code:        "CXR-ECG",
				Label:       "Chest X-ray & ECG",
				System:      "SCT",
				Description: "Chest X-ray and ECG performed as part of assessment; no acute cardiopulmonary abnormality documented.",
			},
			{
				Code:        "BP-MONITOR",
				Label:       "Blood pressure monitoring",
				System:      "SCT",
				Description: "Repeated blood pressure measurements performed; elevated readings recorded and management plan documented.",
			},
		}
	case "J18.9":
		return []Procedure{
			{
				Code:        "CXR",
				Label:       "Chest X-ray (CXR)",
				System:      "SCT",
				Description: "Chest X-ray performed; findings documented and consistent with lower respiratory tract infection.",
			},
			{
				Code:        "BLOODS",
				Label:       "Blood tests",
				System:      "SCT",
				Description: "Blood tests performed (FBC, CRP and renal profile) to support diagnosis and monitor response to treatment.",
			},
		}
	case "N39.0":
		return []Procedure{
			{
				Code:        "URINE",
				Label:       "Urinalysis & urine culture",
				System:      "SCT",
				Description: "Urinalysis performed and urine sent for culture & sensitivity (MC&S) as part of UTI work-up.",
			},
			{
				Code:        "BLOODS",
				Label:       "Blood tests",
				System:      "SCT",
				Description: "Blood tests performed (FBC, CRP and renal profile) where clinically indicated.",
			},
		}
	case "E11.9":
		return []Procedure{
			{
				Code:        "HBA1C-LIPIDS",
				Label:       "Blood tests (HbA1c/Lipids)",
				System:      "SCT",
				Description: "HbA1c and lipid profile checked / arranged as part of diabetes review; renal profile monitored.",
			},
			{
				Code:        "ECG",
				Label:       "ECG",
				System:      "SCT",
				Description: "Baseline ECG performed / reviewed as part of cardiovascular risk assessment.",
			},
		}
	}
	return []Procedure{
		{Code: "BLOODS", Label: "Blood tests", System: "SCT", Description: "Blood tests performed and reviewed."},
		{Code: "ECG", Label: "ECG", System: "SCT", Description: "ECG performed if clinically indicated."},
	}
}

// EvaluationHeadings returns the ordered (heading, result) pairs used to
// populate evaluation/investigation observation groups.
func (s *Scenario) EvaluationHeadings() []Evaluation {
	switch s.Code {
	case "J18.9":
		return []Evaluation{
			{"Chest X-ray (CXR)", "CXR: patchy airspace opacification consistent with infection; no pleural effusion."},
			{"Inflammatory markers (WCC/CRP)", "Bloods: raised inflammatory markers; trend improving on treatment."},
			{"Oxygen saturation", "Obs: oxygen saturation monitored; stable on room air / low-flow oxygen as required."},
		}
	case "N39.0":
		return []Evaluation{
			{"Urinalysis", "Urinalysis: leukocytes/nitrites positive; findings consistent with UTI."},
			{"Urine culture & sensitivity", "Urine MC&S: sent; results pending / to be reviewed by GP if outstanding."},
			{"Renal function (U&E/Creatinine)", "Bloods: renal function checked; no acute kidney injury documented."},
		}
	case "I10":
		return []Evaluation{
			{"Repeat blood pressure measurements", "BP: repeated readings taken; elevated values noted; advice/plan documented."},
			{"ECG", "ECG: no acute ischaemic changes; baseline rhythm documented."},
			{"Renal function & electrolytes", "Bloods: U&E/electrolytes checked; no critical abnormalities documented."},
		}
	case "E11.9":
		return []Evaluation{
			{"Capillary blood glucose", "CBG: monitored during admission; values improved with management plan."},
			{"HbA1c", "HbA1c: checked / arranged; suggests glycaemic control requires review."},
			{"Renal function (U&E/Creatinine)", "Bloods: renal function monitored; no acute deterioration documented."},
		}
	case "S72.001A":
		return []Evaluation{
			{"X-ray hip/pelvis", "Imaging: X-ray confirms hip fracture; ortho plan documented."},
			{"Pre-op bloods (FBC/U&E)", "Bloods: FBC and U&E performed for operative planning; stable results."},
			{"ECG (pre-op)", "ECG: baseline assessment completed; no acute abnormalities documented."},
		}
	}
	return []Evaluation{
		{"Clinical assessment", "Clinical assessment completed; observations monitored."},
		{"Bloods", "Blood tests performed and reviewed."},
		{"Imaging (if indicated)", "Imaging arranged as appropriate."},
	}
}

// Medications returns the discharge medication list for the scenario.
func (s *Scenario) Medications() []string {
	switch s.Code {
	case "S72.001A":
		return []string{
			"Morphine (as required for pain)",
			"Heparin for VTE prophylaxis (as per protocol)",
		}
	case "I10":
		return []string{
			"Losartan 50mg OD",
			"Amlodipine 5mg OD (if required)",
			"Atorvastatin 20mg ON (if indicated)",
		}
	case "N39.0":
		return []string{
			"Nitrofurantoin 100mg BD (as per local guidance)",
			"Paracetamol 1g QDS PRN",
		}
	case "J18.9":
		return []string{
			"Doxycycline 100mg OD (as per local guidance)",
			"Paracetamol 1g QDS PRN",
		}
	case "E11.9":
		return []string{
			"Metformin 500mg BD with food",
			"Atorvastatin 20mg ON (if indicated)",
		}
	}
	return []string{"Paracetamol 1g QDS PRN"}
}
