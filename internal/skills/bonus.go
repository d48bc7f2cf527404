package skills

// Weaver dual-attunement skill ids. The log only carries the id, so their
// names are injected before drawing.
const (
	AttunementFireFire   int64 = 43470
	AttunementFireAir    int64 = 42264
	AttunementFireWater  int64 = 41166
	AttunementFireEarth  int64 = 44857
	AttunementAirAir     int64 = 41692
	AttunementAirWater   int64 = 42360
	AttunementAirFire    int64 = 43229
	AttunementWaterFire  int64 = 42747
	AttunementWaterEarth int64 = 43962
	AttunementEarthEarth int64 = 44948
	AttunementEarthAir   int64 = 41797
	AttunementEarthFire  int64 = 43998
)

// BonusSkills returns a fresh copy of the injected attunement names.
func BonusSkills() map[int64]string {
	return map[int64]string{
		AttunementFireFire:   "Fire/Fire",
		AttunementFireAir:    "Fire/Air",
		AttunementFireWater:  "Fire/Water",
		AttunementFireEarth:  "Fire/Earth",
		AttunementAirAir:     "Air/Air",
		AttunementAirWater:   "Air/Water",
		AttunementAirFire:    "Air/Fire",
		AttunementWaterFire:  "Water/Fire",
		AttunementWaterEarth: "Water/Earth",
		AttunementEarthEarth: "Earth/Earth",
		AttunementEarthAir:   "Earth/Air",
		AttunementEarthFire:  "Earth/Fire",
	}
}
