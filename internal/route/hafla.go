package route

// HAFLA is the demo school run: Tunis (near Lafayette) through Ariana to the
// El Ghazala technopark.
func HAFLA() *Route {
	r, _ := New("hafla-tunis-ghazala", "Maison → École El Ghazala", []Waypoint{
		{Lat: 36.8150, Lon: 10.1800, Name: "Maison"},
		{Lat: 36.8280, Lon: 10.1880},
		{Lat: 36.8450, Lon: 10.1950},
		{Lat: 36.8600, Lon: 10.1900, Name: "Ariana"},
		{Lat: 36.8800, Lon: 10.1850},
		{Lat: 36.8936, Lon: 10.1873, Name: "École El Ghazala"},
	}, []Stop{
		{Name: "Maison", Time: "07:30", Progress: 0},
		{Name: "Avenue H. Bourguiba", Time: "07:45", Progress: 35},
		{Name: "Cité Olympique", Time: "07:55", Progress: 60},
		{Name: "École El Ghazala", Time: "08:15", Progress: 100},
	})
	return r
}
