package synth

import "cloudlead/internal/models"

// templates maps an industry to the contacts cycled through during synthesis.
var templates = map[string][]models.Lead{
	"Technology": {
		{Company: "TechFlow Inc", Name: "Sarah Chen", Title: "CTO", Email: "sarah@techflow.com", Phone: "+1-555-0101", Website: "techflow.com"},
		{Company: "DataNova Systems", Name: "Michael Rodriguez", Title: "Engineering Director", Email: "michael@datanova.com", Website: "datanova.com"},
		{Company: "CloudCraft", Name: "Jessica Williams", Title: "VP of Product", Email: "jessica@cloudcraft.com", Website: "cloudcraft.com"},
	},
	"Finance": {
		{Company: "CapitalFirst Bank", Name: "Robert Johnson", Title: "CFO", Email: "robert@capitalfirst.com", Website: "capitalfirst.com"},
		{Company: "WealthBuild Advisors", Name: "Emily Davis", Title: "Investment Director", Email: "emily@wealthbuild.com", Website: "wealthbuild.com"},
	},
	"Healthcare": {
		{Company: "MedTech Solutions", Name: "Dr. James Wilson", Title: "Chief Medical Officer", Email: "james@medtech.com", Website: "medtech.com"},
		{Company: "BioHealth Labs", Name: "Lisa Anderson", Title: "Research Director", Email: "lisa@biohealth.com", Website: "biohealth.com"},
	},
}

// Templates returns the template list for an industry, falling back to Technology.
func Templates(industry string) []models.Lead {
	if t, ok := templates[industry]; ok {
		return t
	}
	return templates[models.DefaultIndustry]
}
