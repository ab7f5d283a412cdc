package consts

const (
	CHARGE    = 1.6021918e-19    // Elementary charge (C)
	BOLTZMANN = 1.3806226e-23    // Boltzmann constant (J/K)
	KELVIN    = 273.15           // Kelvin temperature (K)
	HBAR      = 1.054588757e-34  // Reduced Planck constant (J*s)
	PLANCK    = 6.62606957e-34   // Planck constant (J*s)
	EMASS     = 9.1093826e-31    // Electron rest mass (kg)
	EPS0      = 8.8541878176e-12 // Vacuum permittivity (F/m)
	LIGHT     = 299792458.0      // Speed of light in vacuum (m/s)
)
