package domain

// Resource is a static reference-content entry. Resource titles double as
// the whitelist the coach may suggest from.
type Resource struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// DefaultResources is the built-in strategic toolbox shown in the resources
// view and offered to the coach as suggestible material.
var DefaultResources = []Resource{
	{
		ID:          1,
		Title:       "Matriz de Eisenhower",
		Subtitle:    "Diferencia lo Urgente de lo Importante",
		Icon:        "filter",
		Description: "Una herramienta para priorizar tareas dividiéndolas en cuatro cuadrantes: 1. Hacer (Urgente e Importante), 2. Planificar (No Urgente e Importante), 3. Delegar (Urgente y No Importante), 4. Eliminar (No Urgente y No Importante).",
	},
	{
		ID:          2,
		Title:       "Principio de Pareto (80/20)",
		Subtitle:    "Enfócate en el 20% que da el 80% de resultados",
		Icon:        "trending-up",
		Description: "Identifica que la mayoría de los resultados (80%) provienen de una minoría de las causas (20%). Tu misión es encontrar y explotar ese 20% vital en tu trabajo, producto, y clientes para maximizar tu impacto con el mínimo esfuerzo.",
	},
	{
		ID:          3,
		Title:       "Pensamiento de Primeros Principios",
		Subtitle:    "Deconstruye problemas a sus verdades fundamentales",
		Icon:        "box",
		Description: "En lugar de razonar por analogía (copiar lo que otros hacen), descompón un problema en sus elementos más básicos y verdades fundamentales. Luego, reconstrúyelo desde cero. Así se crean las verdaderas innovaciones.",
	},
	{
		ID:          4,
		Title:       "Círculo de Competencia",
		Subtitle:    "Opera donde tienes una ventaja real",
		Icon:        "target",
		Description: "Define honestamente y sin ego los límites de tu conocimiento. Opera solo dentro de ese círculo. La clave para evitar errores catastróficos es saber lo que no sabes y tener la disciplina de no jugar en ese terreno.",
	},
}
