package receipt

import (
	"fmt"
	"html"
	"strings"
)

// Fallback renders the static receipt template. It carries the same
// structured fields as the generated version so the customer still gets a
// complete receipt when the generator is unavailable.
func Fallback(in Input) *Content {
	var rows strings.Builder
	for _, item := range in.Items {
		fmt.Fprintf(&rows,
			`<tr><td style="padding:4px 8px;">%s</td><td style="padding:4px 8px;text-align:center;">x%d</td><td style="padding:4px 8px;text-align:right;">$%.2f</td></tr>`,
			html.EscapeString(item.Name), item.Quantity, item.Price)
	}

	body := fmt.Sprintf(`<div style="font-family:Georgia,serif;color:#3d2b1f;">
<h2>¡Gracias por tu compra, %s!</h2>
<p>Recibimos el pago de tu pedido <strong>%s</strong>.</p>
<table style="border-collapse:collapse;width:100%%;">
<thead><tr><th style="text-align:left;padding:4px 8px;">Producto</th><th style="padding:4px 8px;">Cantidad</th><th style="text-align:right;padding:4px 8px;">Precio</th></tr></thead>
<tbody>%s</tbody>
</table>
<p style="font-size:1.1em;"><strong>Total pagado: $%.2f</strong></p>
<p>¡Que disfrutes tus budines!</p>
<p>— Budines Noemi</p>
</div>`,
		html.EscapeString(in.CustomerName), html.EscapeString(in.OrderID), rows.String(), in.Total)

	return &Content{
		Subject: fmt.Sprintf("¡Gracias por tu compra, %s! Recibo del pedido %s", in.CustomerName, in.OrderID),
		Body:    body,
	}
}
