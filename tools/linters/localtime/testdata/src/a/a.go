package a

import "time"

var cst = time.FixedZone("CST", 8*60*60)

func bareNow() {
	_ = time.Now() // want `time.Now\(\) should be followed by .UTC\(\) or .In\(loc\)`
}

func assignedNow() {
	t := time.Now() // want `time.Now\(\) should be followed by .UTC\(\) or .In\(loc\)`
	_ = t
}

func utcNow() {
	_ = time.Now().UTC()
}

func zonedNow() {
	_ = time.Now().In(cst).Format(time.DateOnly)
}

func hostZone() *time.Location {
	return time.Local // want `time.Local depends on the host timezone; use an explicit location`
}

func localMethod(t time.Time) time.Time {
	return t.Local() // want `.Local\(\) depends on the host timezone; use .In\(loc\)`
}

func localAfterNow() {
	_ = time.Now().UTC().Local() // want `.Local\(\) depends on the host timezone; use .In\(loc\)`
}

type event struct {
	Local bool
}

func fieldNamedLocal(e event) bool {
	return e.Local
}

func nolintGeneral() {
	//nolint
	_ = time.Now()
}

func nolintSpecific() {
	_ = time.Now() //nolint:localtime
}

func nolintList() {
	_ = time.Local //nolint:errcheck,localtime
}

func nolintOtherLinter() {
	_ = time.Now() //nolint:otherlinter // want `time.Now\(\) should be followed by .UTC\(\) or .In\(loc\)`
}
