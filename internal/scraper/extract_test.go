package scraper

import (
	"strings"
	"testing"
)

const articleHTML = `<!doctype html>
<html><head>
<title>Título del documento</title>
<meta property="og:title" content="Nuevo puente en Concordia">
<meta name="twitter:title" content="Título de twitter">
<meta name="description" content="Descripción genérica">
<meta name="twitter:description" content="Se habilitó el tránsito sobre el nuevo puente del arroyo Manzores.">
</head><body>
<nav><p>Inicio | Política | Sociedad | Deportes | Contacto | Clasificados | Ediciones anteriores</p></nav>
<aside><p>Esta barra lateral tiene un párrafo bastante largo que no debería ser elegido como lead porque no está dentro del artículo principal.</p></aside>
<article>
<p>Corto.</p>
<p>Compartir en Facebook, Twitter y WhatsApp esta nota sobre el nuevo puente que tanto esperaban los vecinos.</p>
<p>https://www.elheraldo.com.ar/notas/nuevo-puente-arroyo-manzores-concordia-habilitado-transito</p>
<p>El nuevo puente sobre el arroyo Manzores quedó habilitado este lunes tras ocho meses de obra.</p>
<p>La estructura, de 120 metros de largo, permitirá unir los barrios del oeste con el centro de la ciudad sin necesidad de rodear por la ruta.</p>
<p>Desde el municipio indicaron que en las próximas semanas se completará la iluminación y la señalización horizontal de ambas cabeceras del puente.</p>
</article>
</body></html>`

func TestExtract_Metadata(t *testing.T) {
	c := NewExtractor(false, nil).Extract([]byte(articleHTML), "https://example.com/nota")

	if c.Title != "Nuevo puente en Concordia" {
		t.Errorf("Title = %q", c.Title)
	}
	if c.Description != "Se habilitó el tránsito sobre el nuevo puente del arroyo Manzores." {
		t.Errorf("Description = %q", c.Description)
	}
}

func TestExtract_LeadAndParagraphs(t *testing.T) {
	c := NewExtractor(false, nil).Extract([]byte(articleHTML), "https://example.com/nota")

	if !strings.HasPrefix(c.Lead, "El nuevo puente sobre el arroyo Manzores") {
		t.Errorf("Lead = %q", c.Lead)
	}
	if len(c.Paragraphs) != 2 {
		t.Fatalf("got %d paragraphs, want 2: %q", len(c.Paragraphs), c.Paragraphs)
	}
	if !strings.HasPrefix(c.Paragraphs[0], "La estructura") {
		t.Errorf("Paragraphs[0] = %q", c.Paragraphs[0])
	}
	for _, p := range c.Paragraphs {
		if strings.Contains(p, "barra lateral") {
			t.Errorf("sidebar paragraph leaked into article content")
		}
	}
}

func TestExtract_TitleFallbacks(t *testing.T) {
	html := `<html><head><title>  Solo   el título </title></head><body><main><p>x</p></main></body></html>`
	c := NewExtractor(false, nil).Extract([]byte(html), "")
	if c.Title != "Solo el título" {
		t.Errorf("Title = %q", c.Title)
	}
	if c.Description != "" || c.Lead != "" || len(c.Paragraphs) != 0 {
		t.Errorf("unexpected content: %+v", c)
	}
}

func TestExtract_MainThenDocument(t *testing.T) {
	long := strings.Repeat("Texto del cuerpo principal de la nota periodística. ", 3)
	html := `<html><body><p>` + strings.Repeat("Párrafo fuera de main que no debe ganar como lead de la nota. ", 2) + `</p><main><p>` + long + `</p></main></body></html>`
	c := NewExtractor(false, nil).Extract([]byte(html), "")
	if !strings.HasPrefix(c.Lead, "Texto del cuerpo") {
		t.Errorf("main not preferred: %q", c.Lead)
	}

	html = `<html><body><p>` + long + `</p></body></html>`
	c = NewExtractor(false, nil).Extract([]byte(html), "")
	if c.Lead == "" {
		t.Errorf("document fallback produced no lead")
	}
}

func TestExtract_Malformed(t *testing.T) {
	for _, in := range []string{"", "<<<>>>", "<html><p>sin cerrar", "\x00\x01\x02"} {
		c := NewExtractor(true, nil).Extract([]byte(in), "https://example.com")
		if c.Lead != "" || len(c.Paragraphs) != 0 {
			t.Errorf("Extract(%q) = %+v", in, c)
		}
	}
}

func TestExtract_ReadabilityFallback(t *testing.T) {
	body := strings.Repeat("<p>El Concejo Deliberante de la ciudad aprobó la ordenanza de arbolado urbano luego de un largo debate entre los bloques.</p>", 6)
	html := `<html><head></head><body><div id="content"><h1>Ordenanza de arbolado</h1>` + body + `</div></body></html>`

	without := NewExtractor(false, nil).Extract([]byte(html), "https://example.com/nota")
	if without.Title != "" {
		t.Fatalf("expected no title without readability, got %q", without.Title)
	}

	with := NewExtractor(true, nil).Extract([]byte(html), "https://example.com/nota")
	if with.Title == "" && with.Description == "" {
		t.Errorf("readability fallback produced neither title nor description")
	}
}

const shareLine = "Share your thoughts on the new riverside works in Concordia with our editors and readers today."

func TestExtract_SkipsShareLead(t *testing.T) {
	share := shareLine
	body := "La obra sobre la costanera avanza según lo previsto y estará terminada antes del invierno, informó el municipio."
	html := `<html><body><article><p>` + share + `</p><p>` + body + `</p></article></body></html>`

	c := NewExtractor(false, nil).Extract([]byte(html), "https://example.com/nota")
	if c.Lead != body {
		t.Errorf("Lead = %q, want the first non-boilerplate paragraph", c.Lead)
	}
}

func TestIsNoise(t *testing.T) {
	cases := map[string]bool{
		"https://example.com/a/b":                  true,
		"www.example.com":                          true,
		"Lo Más Visto de la semana":                true,
		"Seguí la cobertura en INSTAGRAM":          true,
		"Suscribase al boletín semanal":            true,
		shareLine:                                  true,
		"El municipio firmó un convenio con Salto": false,
		"Texto común sobre la ciudad":              false,
	}
	for in, want := range cases {
		if got := isNoise(in); got != want {
			t.Errorf("isNoise(%q) = %v, want %v", in, got, want)
		}
	}
}
