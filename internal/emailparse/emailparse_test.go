package emailparse

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		want     Result
		duration int
	}{
		{
			name: "LE FIVE confirmation",
			text: `Bonjour,

Votre réservation est confirmée pour le samedi 26 juillet 2025
entre 19:30 et 21:00 dans le centre LE FIVE Paris 18.
Payez votre part ici : https://pay.lefive.fr/abc123`,
			want: Result{
				Success:     true,
				Date:        "2025-07-26",
				Time:        "19:30",
				EndTime:     "21:00",
				Location:    "LE FIVE Paris 18",
				PaymentLink: "https://pay.lefive.fr/abc123",
			},
			duration: 90,
		},
		{
			name: "numeric date and h notation",
			text: "Match le 3/8/2025 de 20h00 à 21h30, centre Urban Soccer Ivry.",
			want: Result{
				Success:  true,
				Date:     "2025-08-03",
				Time:     "20:00",
				EndTime:  "21:30",
				Location: "Urban Soccer Ivry",
			},
			duration: 90,
		},
		{
			name: "iso date, start time only",
			text: "Rendez-vous 2025-09-12 à 18:45",
			want: Result{
				Success:  true,
				Date:     "2025-09-12",
				Time:     "18:45",
				Location: "18:45",
			},
		},
		{
			name: "dash range across midnight",
			text: "Le 31 décembre 2025, 23:30 – 00:30. Lieu inconnu",
			want: Result{
				Success:  true,
				Date:     "2025-12-31",
				Time:     "23:30",
				EndTime:  "00:30",
				Location: "inconnu",
			},
			duration: 60,
		},
		{
			name: "uppercase month",
			text: "MERCREDI 5 FÉVRIER 2025 de 12:00 à 13:00",
			want: Result{
				Success:  true,
				Date:     "2025-02-05",
				Time:     "12:00",
				EndTime:  "13:00",
				Location: "13:00",
			},
			duration: 60,
		},
		{
			name: "decomposed accents",
			text: "le 14 août 2025 entre 10:00 et 11:00",
			want: Result{
				Success:  true,
				Date:     "2025-08-14",
				Time:     "10:00",
				EndTime:  "11:00",
				Location: UnknownLocation,
			},
			duration: 60,
		},
		{
			name: "empty",
			text: "   \n\t ",
			want: Result{Error: MsgEmpty},
		},
		{
			name: "no date",
			text: "On joue entre 19:30 et 21:00",
			want: Result{Error: MsgNoDate},
		},
		{
			name: "impossible date",
			text: "Le 31/02/2025 entre 19:30 et 21:00",
			want: Result{Error: MsgBadDate},
		},
		{
			name: "no time",
			text: "Le samedi 26 juillet 2025 au centre",
			want: Result{Error: MsgNoTime},
		},
		{
			name: "time out of range",
			text: "Le 26/07/2025 entre 25:30 et 26:00",
			want: Result{Error: MsgBadTime},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text)
			if got != tt.want {
				t.Fatalf("Parse() = %+v, want %+v", got, tt.want)
			}
			if d := got.Duration(); d != tt.duration {
				t.Errorf("Duration() = %d, want %d", d, tt.duration)
			}
		})
	}
}

func TestHasLocation(t *testing.T) {
	if (Result{Location: UnknownLocation}).HasLocation() {
		t.Error("unknown location reported as found")
	}
	if !(Result{Location: "LE FIVE Créteil"}).HasLocation() {
		t.Error("location not reported as found")
	}
}
