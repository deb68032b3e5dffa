package detect

// FallbackKeywords is the compiled-in Spanish mental-health keyword list used
// when the keyword store is empty.
var FallbackKeywords = []string{
	"terapia", "terapeuta", "psicólogo", "psicóloga", "psicología",
	"salud mental", "psiquiatra", "psiquiatría", "tratamiento psicológico",
	"sesión de terapia", "mi terapeuta", "mi psicólogo", "mi psicóloga",
	"ansiedad", "depresión", "depresion", "crisis de pánico", "pánico",
	"autolesión", "autolesion", "suicidio", "salud emocional",
	"bienestar mental", "apoyo psicológico", "manejo de emociones",
	"problemas emocionales", "trauma", "estrés", "estres", "burnout",
	"ataque de ansiedad", "consulta psicológica", "cuidado mental",
	"mindfulness", "autoestima", "diagnóstico mental", "diagnostico mental",
	"terapia familiar", "terapia de pareja", "terapia grupal", "terapia online",
	"acompañamiento terapéutico", "medicación psiquiátrica", "antidepresivos",
	"ansiolíticos", "estabilizadores del ánimo", "trastorno", "fobia",
	"TOC", "TDAH", "bipolar", "esquizofrenia", "borderline", "TEPT",
	"trastorno de ansiedad", "trastorno depresivo", "ideación suicida",
	"pensamientos suicidas", "cutting", "bulimia", "anorexia",
	"trastorno alimenticio", "adicción", "rehabilitación", "desintoxicación",
}
